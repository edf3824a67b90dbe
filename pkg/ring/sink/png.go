package sink

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/matzehuels/avatarstack/pkg/ring"
)

// PNGOption configures PNG rendering via [RenderPNG].
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale      float64
	background color.Color
	debug      bool
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
// Non-positive values are ignored.
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithPNGBackground fills the frame before drawing slots. A nil colour
// leaves the frame transparent.
func WithPNGBackground(c color.Color) PNGOption { return func(r *pngRenderer) { r.background = c } }

// WithPNGDebug outlines every slot circle and notch.
func WithPNGDebug() PNGOption { return func(r *pngRenderer) { r.debug = true } }

// RenderPNG renders the snapshot as a PNG image.
func RenderPNG(s ring.Snapshot, opts ...PNGOption) ([]byte, error) {
	img := Rasterize(s, opts...)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Rasterize draws the snapshot into an in-memory image.
func Rasterize(s ring.Snapshot, opts ...PNGOption) image.Image {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}

	w := max(1, int(math.Ceil(float64(s.Frame.Width)*r.scale)))
	h := max(1, int(math.Ceil(float64(s.Frame.Height)*r.scale)))
	dc := gg.NewContext(w, h)
	if r.background != nil {
		dc.SetColor(r.background)
		dc.Clear()
	}

	slots := paints(s)
	for _, p := range slots {
		r.slot(dc, p)
	}
	if r.debug {
		for _, p := range slots {
			r.outline(dc, p)
		}
	}
	return dc.Image()
}

func (r *pngRenderer) slot(dc *gg.Context, p paint) {
	k := r.scale
	c := p.circle

	dc.ResetClip()
	if p.cut {
		n := p.notch
		dc.DrawCircle(n.Center.X*k, n.Center.Y*k, n.Radius*k)
		dc.Clip()
		dc.InvertMask()
	}
	dc.DrawCircle(c.Center.X*k, c.Center.Y*k, c.Radius*k)
	dc.Clip()

	b := p.bounds
	if p.image != nil {
		bw := max(1, int(math.Round(b.W*k)))
		bh := max(1, int(math.Round(b.H*k)))
		dc.DrawImage(imaging.Resize(p.image, bw, bh, imaging.Lanczos),
			int(math.Round(b.X*k)), int(math.Round(b.Y*k)))
	} else {
		dc.SetColor(p.fill)
		dc.DrawRectangle(b.X*k, b.Y*k, b.W*k, b.H*k)
		dc.Fill()
		if in := Initials(p.label); in != "" {
			dc.SetFontFace(basicfont.Face7x13)
			dc.SetColor(textColor(p.fill))
			dc.DrawStringAnchored(in, c.Center.X*k, c.Center.Y*k, 0.5, 0.35)
		}
	}
	dc.ResetClip()
}

func (r *pngRenderer) outline(dc *gg.Context, p paint) {
	k := r.scale
	dc.SetLineWidth(max(1, k/2))
	c := p.circle
	dc.SetHexColor("#ff0066")
	dc.DrawCircle(c.Center.X*k, c.Center.Y*k, c.Radius*k)
	dc.Stroke()
	if p.cut {
		n := p.notch
		dc.SetHexColor("#00aaff")
		dc.SetDash(4*k, 4*k)
		dc.DrawCircle(n.Center.X*k, n.Center.Y*k, n.Radius*k)
		dc.Stroke()
		dc.SetDash()
	}
}
