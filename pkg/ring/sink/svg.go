package sink

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/avatarstack/pkg/ring"
)

// DefaultPrecision is the number of SVG user units per pixel. svgo writes
// integer coordinates, so geometry is scaled up and the viewBox maps it back.
const DefaultPrecision = 100

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	precision  int
	background string
	debug      bool
	idPrefix   string
	title      string
}

// WithPrecision sets the user units per pixel. Values below 1 are ignored.
func WithPrecision(p int) SVGOption {
	return func(r *svgRenderer) {
		if p >= 1 {
			r.precision = p
		}
	}
}

// WithBackground fills the frame with a colour before drawing slots.
func WithBackground(hex string) SVGOption { return func(r *svgRenderer) { r.background = hex } }

// WithDebug outlines every slot circle and notch.
func WithDebug() SVGOption { return func(r *svgRenderer) { r.debug = true } }

// WithIDPrefix prefixes clip and mask ids so several avatars can be inlined
// into one document.
func WithIDPrefix(p string) SVGOption { return func(r *svgRenderer) { r.idPrefix = p } }

// WithTitle sets the document title shown by viewers as a tooltip.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// RenderSVG renders the snapshot as a standalone SVG document.
func RenderSVG(s ring.Snapshot, opts ...SVGOption) ([]byte, error) {
	r := svgRenderer{precision: DefaultPrecision, idPrefix: "avatar-"}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := s.Frame.Width, s.Frame.Height
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Startview(w, h, 0, 0, w*r.precision, h*r.precision)
	if r.title != "" {
		canvas.Title(r.title)
	}

	slots := paints(s)
	if len(slots) > 0 {
		canvas.Def()
		for _, p := range slots {
			r.defs(canvas, p, w, h)
		}
		canvas.DefEnd()
	}

	if r.background != "" {
		canvas.Rect(0, 0, w*r.precision, h*r.precision, "fill:"+r.background)
	}

	for _, p := range slots {
		if err := r.slot(canvas, p); err != nil {
			return nil, err
		}
	}

	if r.debug {
		for _, p := range slots {
			r.outline(canvas, p)
		}
	}

	canvas.End()
	return buf.Bytes(), nil
}

func (r *svgRenderer) u(v float64) int { return int(math.Round(v * float64(r.precision))) }

func (r *svgRenderer) clipID(i int) string { return fmt.Sprintf("%sclip-%d", r.idPrefix, i) }
func (r *svgRenderer) maskID(i int) string { return fmt.Sprintf("%snotch-%d", r.idPrefix, i) }

func (r *svgRenderer) defs(canvas *svg.SVG, p paint, w, h int) {
	c := p.circle
	canvas.ClipPath(fmt.Sprintf(`id="%s"`, r.clipID(p.index)))
	canvas.Circle(r.u(c.Center.X), r.u(c.Center.Y), r.u(c.Radius))
	canvas.ClipEnd()

	if !p.cut {
		return
	}
	n := p.notch
	canvas.Mask(r.maskID(p.index), 0, 0, w*r.precision, h*r.precision, `maskUnits="userSpaceOnUse"`)
	canvas.Rect(0, 0, w*r.precision, h*r.precision, "fill:white")
	canvas.Circle(r.u(n.Center.X), r.u(n.Center.Y), r.u(n.Radius), "fill:black")
	canvas.MaskEnd()
}

func (r *svgRenderer) slot(canvas *svg.SVG, p paint) error {
	attrs := []string{
		fmt.Sprintf(`id="%sslot-%d"`, r.idPrefix, p.index),
		fmt.Sprintf(`clip-path="url(#%s)"`, r.clipID(p.index)),
	}
	if p.cut {
		attrs = append(attrs, fmt.Sprintf(`mask="url(#%s)"`, r.maskID(p.index)))
	}

	if p.url != "" {
		canvas.Link(html.EscapeString(p.url), html.EscapeString(p.label))
	}
	canvas.Group(attrs...)
	if p.label != "" {
		canvas.Title(p.label)
	}

	b := p.bounds
	x, y, bw, bh := r.u(b.X), r.u(b.Y), r.u(b.W), r.u(b.H)
	if p.image != nil {
		uri, err := dataURI(p, b)
		if err != nil {
			return err
		}
		canvas.Image(x, y, bw, bh, uri, `preserveAspectRatio="none"`)
	} else {
		canvas.Rect(x, y, bw, bh, "fill:"+Hex(p.fill))
		if in := Initials(p.label); in != "" {
			c := p.circle
			canvas.Text(r.u(c.Center.X), r.u(c.Center.Y), in, fmt.Sprintf(
				"fill:%s;font-size:%dpx;font-family:system-ui,sans-serif;font-weight:600;text-anchor:middle;dominant-baseline:central",
				Hex(textColor(p.fill)), r.u(c.Radius*0.8)))
		}
	}
	canvas.Gend()
	if p.url != "" {
		canvas.LinkEnd()
	}
	return nil
}

func (r *svgRenderer) outline(canvas *svg.SVG, p paint) {
	stroke := max(1, r.precision/2)
	c := p.circle
	canvas.Circle(r.u(c.Center.X), r.u(c.Center.Y), r.u(c.Radius),
		fmt.Sprintf("fill:none;stroke:#ff0066;stroke-width:%d", stroke))
	if p.cut {
		n := p.notch
		canvas.Circle(r.u(n.Center.X), r.u(n.Center.Y), r.u(n.Radius),
			fmt.Sprintf("fill:none;stroke:#00aaff;stroke-width:%d;stroke-dasharray:%d", stroke, stroke*4))
	}
}

// dataURI encodes the element image, resized to its bounds, as a PNG data URI.
func dataURI(p paint, b box) (string, error) {
	img := imaging.Resize(p.image, max(1, int(math.Round(b.W))), max(1, int(math.Round(b.H))), imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("encode slot %d image: %w", p.index, err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
