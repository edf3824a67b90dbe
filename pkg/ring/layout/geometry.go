package layout

import "math"

// Point is a location in content-local coordinates. Y grows downwards.
type Point struct {
	X, Y float64
}

// Rotate returns p rotated clockwise by deg degrees about pivot.
// Clockwise is in screen space, where Y points down.
func (p Point) Rotate(deg float64, pivot Point) Point {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	dx, dy := p.X-pivot.X, p.Y-pivot.Y
	return Point{
		X: pivot.X + dx*cos - dy*sin,
		Y: pivot.Y + dx*sin + dy*cos,
	}
}

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Rect is an integer draw rectangle. Right and Bottom are exclusive.
type Rect struct {
	Left, Top, Right, Bottom int
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether the rectangle encloses no area.
func (r Rect) Empty() bool { return r.Left >= r.Right || r.Top >= r.Bottom }

// Circle is a centre and a radius.
type Circle struct {
	Center Point
	Radius float64
}

// Contains reports whether p lies inside or on the circle.
func (c Circle) Contains(p Point) bool {
	return c.Radius > 0 && c.Center.Dist(p) <= c.Radius
}

// Mask is a circle with an inverted fill rule: everything outside the circle
// is inside the mask. Renderers clear the mask area to clip an element to its
// slot.
type Mask struct {
	Circle
}

// Covers reports whether p falls in the cleared area of the mask.
// A zero-radius mask covers everything.
func (m Mask) Covers(p Point) bool {
	return !m.Circle.Contains(p)
}
