package layout

import "math"

// MaxSlots is the largest number of circles a ring can hold.
const MaxSlots = 5

// Slot is the computed geometry of one circle in the ring.
type Slot struct {
	Center    Point
	HasGap    bool
	GapAnchor Point
}

// Geometry is the result of one layout pass.
type Geometry struct {
	ContentSize float64
	Radius      float64
	OffsetY     float64
	Slots       []Slot
}

// Pivot returns the point the slots rotate about.
func (g Geometry) Pivot() Point {
	c := g.ContentSize / 2
	return Point{X: c, Y: c + g.OffsetY}
}

// Step returns the rotation between neighbouring slots in degrees.
func (g Geometry) Step() float64 {
	if len(g.Slots) == 0 {
		return 0
	}
	return 360 / float64(len(g.Slots))
}

// Mask returns the inverted clip circle of slot i.
func (g Geometry) Mask(i int) Mask {
	return Mask{Circle{Center: g.Slots[i].Center, Radius: g.Radius}}
}

// Radius returns the shared circle radius for n slots in a square of side size.
func Radius(size float64, n int) float64 {
	if size <= 0 || n <= 0 {
		return 0
	}
	switch n {
	case 1:
		return size / 2
	case 2:
		return size / (2 + 2*math.Sin(math.Pi/4))
	case 4:
		return size / 4
	default:
		N := float64(n)
		return size / (2 * (2*math.Sin((N-2)*math.Pi/(2*N)) + 1))
	}
}

// CircumRadius returns the radius of the circle that encloses n packed
// circles of radius r.
func CircumRadius(r float64, n int) float64 {
	sinN := math.Sin(math.Pi / float64(n))
	return r * (sinN + 1) / sinN
}

// OffsetY returns the vertical shift that recenters an asymmetric cluster.
// It is zero for 1, 2 and 4 slots.
func OffsetY(size, r float64, n int) float64 {
	switch n {
	case 0, 1, 2, 4:
		return 0
	}
	N := float64(n)
	R := CircumRadius(r, n)
	return (size - R - r*(1+1/math.Tan(math.Pi/N))) / 2
}

// Compute lays out n slots in a square content area of side size.
// A non-positive size or zero n yields zero geometry with n zeroed slots.
func Compute(size float64, n int) Geometry {
	g := Geometry{Slots: make([]Slot, max(n, 0))}
	if size <= 0 || n <= 0 {
		return g
	}

	r := Radius(size, n)
	g.ContentSize = size
	g.Radius = r
	g.OffsetY = OffsetY(size, r, n)

	seed := Point{X: size / 2, Y: r}
	if n%2 == 0 {
		seed = Point{X: r, Y: r}
	}

	pivot := g.Pivot()
	step := g.Step()
	for i := range g.Slots {
		s := &g.Slots[i]
		if i > 0 {
			s.HasGap = true
			s.GapAnchor = g.Slots[i-1].Center
		}
		s.Center = seed.Rotate(float64(i)*step, pivot)
	}
	if n > 2 {
		g.Slots[0].HasGap = true
		g.Slots[0].GapAnchor = g.Slots[n-1].Center
	}
	return g
}
