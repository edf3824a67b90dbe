package ring

import (
	"math"

	"github.com/matzehuels/avatarstack/pkg/ring/layout"
)

// Snapshot is a copy of a composition's geometry for renderers. Slot
// coordinates are content-local and exclude OffsetY; [Snapshot.Origin]
// gives the translation to frame coordinates.
type Snapshot struct {
	Frame       Frame
	ContentSize float64
	Radius      float64
	OffsetY     float64
	Gap         float64
	Fit         layout.Fit
	Slots       []Slot
}

// Snapshot captures the current geometry. Elements are shared, geometry is
// copied.
func (c *Composition) Snapshot() Snapshot {
	s := Snapshot{
		Frame:       c.frame,
		ContentSize: c.size,
		Radius:      c.radius,
		OffsetY:     c.offsetY,
		Gap:         c.gap,
		Fit:         c.fit,
		Slots:       make([]Slot, len(c.slots)),
	}
	for i, slot := range c.slots {
		s.Slots[i] = *slot
	}
	if s.Frame == (Frame{}) {
		side := int(math.Ceil(max(c.size, 0)))
		s.Frame = Frame{Width: side, Height: side}
	}
	return s
}

// Empty reports whether there is nothing to draw.
func (s Snapshot) Empty() bool {
	return s.Radius <= 0 || len(s.Slots) == 0
}

// Origin returns the translation from slot coordinates to frame
// coordinates.
func (s Snapshot) Origin() layout.Point {
	o := s.Frame.ContentOrigin()
	o.Y += s.OffsetY
	return o
}

// Pivot returns the point the slots are arranged around, in slot
// coordinates. Add [Snapshot.Origin] for frame coordinates.
func (s Snapshot) Pivot() layout.Point {
	c := s.ContentSize / 2
	return layout.Point{X: c, Y: c + s.OffsetY}
}

// Diameter returns the slot diameter rounded to whole pixels.
func (s Snapshot) Diameter() int { return int(math.Round(s.Radius * 2)) }

// NotchRadius returns the radius of the circle a gap cuts out of a slot.
func (s Snapshot) NotchRadius() float64 { return s.Radius * (1 + s.Gap) }

// Notch returns the gap circle cut out of slot i. ok is false when the slot
// has no gap or the gap fraction is zero.
func (s Snapshot) Notch(i int) (c layout.Circle, ok bool) {
	slot := s.Slots[i]
	if !slot.HasGap || s.Gap <= 0 || s.Radius <= 0 {
		return layout.Circle{}, false
	}
	return layout.Circle{Center: slot.GapAnchor, Radius: s.NotchRadius()}, true
}

// SlotAt returns the index of the slot visible at p (slot coordinates), or
// -1 for background. Slots paint in order, each clipped to its circle minus
// its notch, so later slots cover earlier ones.
func (s Snapshot) SlotAt(p layout.Point) int {
	hit := -1
	if s.Empty() {
		return hit
	}
	for i, slot := range s.Slots {
		if slot.Mask().Covers(p) {
			continue
		}
		if n, ok := s.Notch(i); ok && n.Contains(p) {
			continue
		}
		hit = i
	}
	return hit
}
