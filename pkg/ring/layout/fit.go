package layout

import (
	"fmt"
	"math"
	"strings"
)

// Fit is the policy for mapping element content into a circular slot.
type Fit int

const (
	// FitFill stretches the content to the slot's bounding square.
	FitFill Fit = iota
	// FitCenter scales the content uniformly so its shorter side spans the
	// slot diameter, centred on the slot.
	FitCenter
	// FitStart scales like FitCenter and anchors the overflow towards the
	// leading (top/left) edge.
	FitStart
	// FitEnd scales like FitCenter and anchors the overflow towards the
	// trailing (bottom/right) edge.
	FitEnd
)

// DefaultFit is the fit a new composition starts with.
const DefaultFit = FitCenter

var fitNames = [...]string{"fit", "center", "start", "end"}

// String returns the lower-case name of the fit.
func (f Fit) String() string {
	if f < 0 || int(f) >= len(fitNames) {
		return fmt.Sprintf("Fit(%d)", int(f))
	}
	return fitNames[f]
}

// Valid reports whether f is one of the defined fit policies.
func (f Fit) Valid() bool { return f >= FitFill && f <= FitEnd }

// Next cycles to the following fit policy.
func (f Fit) Next() Fit { return (f + 1) % Fit(len(fitNames)) }

// ParseFit resolves a fit name case-insensitively.
// "fill" is accepted as an alias of "fit".
func ParseFit(s string) (Fit, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "fill" {
		return FitFill, nil
	}
	for i, n := range fitNames {
		if n == name {
			return Fit(i), nil
		}
	}
	return 0, fmt.Errorf("unknown fit %q (must be fit, center, start or end)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (f Fit) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("invalid fit %d", int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Fit) UnmarshalText(b []byte) error {
	v, err := ParseFit(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Bounds returns the draw rectangle for an element of intrinsic size
// (width, height) placed in a slot of the given centre and radius.
//
// Content with an unknown or square intrinsic size, or any content under
// FitFill, fills the slot's bounding square. Otherwise the content is scaled
// so its shorter side spans the diameter and positioned per fit.
//
// Left and top are truncated toward zero, right and bottom rounded to nearest.
func Bounds(center Point, radius float64, width, height int, fit Fit) Rect {
	if radius <= 0 {
		return Rect{}
	}

	var left, top, right, bottom float64
	if width <= 0 || height <= 0 || width == height || fit == FitFill {
		left, top, right, bottom = -radius, -radius, radius, radius
	} else {
		scale := radius / float64(min(width, height))
		hw, hh := float64(width)*scale, float64(height)*scale
		left, top, right, bottom = -hw, -hh, hw, hh

		if fit == FitStart || fit == FitEnd {
			dir := 1.0
			if fit == FitEnd {
				dir = -1
			}
			dx := (hw - radius) * dir
			dy := (hh - radius) * dir
			left, right = left+dx, right+dx
			top, bottom = top+dy, bottom+dy
		}
	}

	return Rect{
		Left:   int(math.Trunc(left + center.X)),
		Top:    int(math.Trunc(top + center.Y)),
		Right:  int(math.Round(right + center.X)),
		Bottom: int(math.Round(bottom + center.Y)),
	}
}
