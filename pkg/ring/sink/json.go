package sink

import (
	"encoding/json"

	"github.com/matzehuels/avatarstack/pkg/ring"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	indent bool
	scene  string
}

// WithIndent pretty-prints the output.
func WithIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

// WithSceneHash records the hash of the scene the snapshot was built from.
func WithSceneHash(h string) JSONOption { return func(r *jsonRenderer) { r.scene = h } }

// Layout is the JSON form of a snapshot. All coordinates are in frame
// pixels.
type Layout struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	ContentSize float64 `json:"content_size"`
	Radius      float64 `json:"radius"`
	Diameter    int     `json:"diameter"`
	OffsetY     float64 `json:"offset_y"`
	Pivot       Point   `json:"pivot"`
	Gap         float64 `json:"gap"`
	Fit         string  `json:"fit"`
	Scene       string  `json:"scene,omitempty"`
	Slots       []Slot  `json:"slots"`
}

// Point is a position in frame pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Slot is the JSON form of one slot.
type Slot struct {
	Index  int     `json:"index"`
	ID     *int    `json:"id,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Bounds Bounds  `json:"bounds"`
	Notch  *Notch  `json:"notch,omitempty"`
	Label  string  `json:"label,omitempty"`
	Color  string  `json:"color,omitempty"`
	URL    string  `json:"url,omitempty"`
	Image  bool    `json:"image,omitempty"`
}

// Bounds is the rectangle an element is drawn into.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Notch is the circle cut out of a slot.
type Notch struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// BuildLayout converts a snapshot to its JSON form.
func BuildLayout(s ring.Snapshot) Layout {
	out := Layout{
		Width:       s.Frame.Width,
		Height:      s.Frame.Height,
		ContentSize: s.ContentSize,
		Radius:      s.Radius,
		Diameter:    s.Diameter(),
		OffsetY:     s.OffsetY,
		Gap:         s.Gap,
		Fit:         s.Fit.String(),
		Slots:       []Slot{},
	}
	pivot := s.Origin().Add(s.Pivot())
	out.Pivot = Point{X: pivot.X, Y: pivot.Y}
	for _, p := range paints(s) {
		js := Slot{
			Index: p.index,
			X:     p.circle.Center.X,
			Y:     p.circle.Center.Y,
			Bounds: Bounds{
				X: p.bounds.X, Y: p.bounds.Y, Width: p.bounds.W, Height: p.bounds.H,
			},
			Label: p.label,
			URL:   p.url,
			Image: p.image != nil,
		}
		if p.id != ring.NoID {
			id := p.id
			js.ID = &id
		}
		if p.image == nil {
			js.Color = Hex(p.fill)
		}
		if p.cut {
			js.Notch = &Notch{X: p.notch.Center.X, Y: p.notch.Center.Y, Radius: p.notch.Radius}
		}
		out.Slots = append(out.Slots, js)
	}
	return out
}

// RenderJSON renders the snapshot geometry as JSON.
func RenderJSON(s ring.Snapshot, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := BuildLayout(s)
	out.Scene = r.scene
	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}
