package ring

import "github.com/matzehuels/avatarstack/pkg/ring/layout"

// Insets is padding around the content area, in pixels.
type Insets struct {
	Left, Top, Right, Bottom int
}

// Frame is the full rectangle a host gives the composition. The content area
// is the largest square that fits inside the padding, centred along the
// longer axis.
type Frame struct {
	Width, Height int
	Padding       Insets
}

// Square returns a frame of side size with uniform padding.
func Square(size, padding int) Frame {
	return Frame{
		Width:   size,
		Height:  size,
		Padding: Insets{padding, padding, padding, padding},
	}
}

func (f Frame) inner() (w, h int) {
	w = f.Width - f.Padding.Left - f.Padding.Right
	h = f.Height - f.Padding.Top - f.Padding.Bottom
	return w, h
}

// ContentSize returns the side of the square content area.
func (f Frame) ContentSize() float64 {
	w, h := f.inner()
	return float64(max(0, min(w, h)))
}

// ContentOrigin returns the top-left corner of the content square within the
// frame.
func (f Frame) ContentOrigin() layout.Point {
	w, h := f.inner()
	p := layout.Point{X: float64(f.Padding.Left), Y: float64(f.Padding.Top)}
	if w > h {
		p.X += float64(w-h) / 2
	} else {
		p.Y += float64(h-w) / 2
	}
	return p
}
