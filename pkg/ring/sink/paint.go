package sink

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"unicode"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/avatarstack/pkg/ring"
	"github.com/matzehuels/avatarstack/pkg/ring/layout"
)

// Imager is implemented by elements that draw a bitmap.
type Imager interface {
	Image() image.Image
}

// Filler is implemented by elements that draw a solid colour when they have
// no image.
type Filler interface {
	Fill() color.Color
}

// Labeler is implemented by elements with a display name. Renderers show
// its initials on image-less slots and use it as a tooltip.
type Labeler interface {
	Label() string
}

// Linker is implemented by elements that link somewhere. Only SVG output
// carries links.
type Linker interface {
	URL() string
}

// box is a rectangle in frame coordinates.
type box struct {
	X, Y, W, H float64
}

// paint is everything a renderer needs for one slot, in frame coordinates.
type paint struct {
	index  int
	id     int
	circle layout.Circle
	notch  layout.Circle
	cut    bool
	bounds box
	image  image.Image
	fill   color.Color
	label  string
	url    string
}

// paints resolves the snapshot's slots into drawing instructions.
func paints(s ring.Snapshot) []paint {
	if s.Empty() {
		return nil
	}
	o := s.Origin()
	out := make([]paint, len(s.Slots))
	for i, slot := range s.Slots {
		p := paint{
			index:  i,
			id:     slot.ID,
			circle: layout.Circle{Center: slot.Center.Add(o), Radius: slot.Radius},
			bounds: box{
				X: float64(slot.Bounds.Left) + o.X,
				Y: float64(slot.Bounds.Top) + o.Y,
				W: float64(slot.Bounds.Width()),
				H: float64(slot.Bounds.Height()),
			},
		}
		if n, ok := s.Notch(i); ok {
			p.cut = true
			p.notch = layout.Circle{Center: n.Center.Add(o), Radius: n.Radius}
		}
		if im, ok := slot.Element.(Imager); ok {
			p.image = im.Image()
		}
		if f, ok := slot.Element.(Filler); ok {
			p.fill = f.Fill()
		}
		if p.fill == nil {
			p.fill = PaletteColor(i)
		}
		if l, ok := slot.Element.(Labeler); ok {
			p.label = l.Label()
		}
		if l, ok := slot.Element.(Linker); ok {
			p.url = l.URL()
		}
		out[i] = p
	}
	return out
}

// PaletteColor returns the fallback fill for slot i. Hues are spaced evenly
// around the wheel so neighbours never share a colour.
func PaletteColor(i int) color.Color {
	h := math.Mod(float64(i%ring.MaxSlots)*360/ring.MaxSlots+200, 360)
	return colorful.Hsv(h, 0.45, 0.85).Clamped()
}

// Hex formats c as #rrggbb, ignoring alpha.
func Hex(c color.Color) string {
	cf, _ := colorful.MakeColor(c)
	return cf.Clamped().Hex()
}

// ParseColor parses a #rgb or #rrggbb string.
func ParseColor(s string) (color.Color, error) {
	s = expandHex(strings.TrimSpace(s))
	if len(s) != 7 || s[0] != '#' {
		return nil, fmt.Errorf("invalid colour %q: want #rgb or #rrggbb", s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func expandHex(s string) string {
	if len(s) != 4 || s[0] != '#' {
		return s
	}
	return string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
}

// Initials returns up to two upper-case initials of label.
func Initials(label string) string {
	var out []rune
	for _, w := range strings.Fields(label) {
		r := []rune(w)[0]
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}

// textColor picks black or white, whichever reads better on bg.
func textColor(bg color.Color) color.Color {
	cf, _ := colorful.MakeColor(bg)
	l, _, _ := cf.Lab()
	if l > 0.6 {
		return color.Black
	}
	return color.White
}
