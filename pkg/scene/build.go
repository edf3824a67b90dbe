package scene

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"image"
	"image/color"
	"io/fs"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	apperr "github.com/matzehuels/avatarstack/pkg/errors"
	"github.com/matzehuels/avatarstack/pkg/ring"
	"github.com/matzehuels/avatarstack/pkg/ring/sink"
)

// Item is the element a scene entry becomes. It carries everything the
// sinks know how to draw.
type Item struct {
	label  string
	url    string
	fill   color.Color
	img    image.Image
	width  int
	height int
}

// NewItem creates an image-less item.
func NewItem(label string, fill color.Color) *Item {
	return &Item{label: label, fill: fill}
}

// IntrinsicSize returns the explicit size from the scene, else the image
// size, else zero (square fit).
func (it *Item) IntrinsicSize() (int, int) {
	if it.width > 0 && it.height > 0 {
		return it.width, it.height
	}
	if it.img != nil {
		b := it.img.Bounds()
		return b.Dx(), b.Dy()
	}
	return 0, 0
}

// Image returns the decoded image, or nil.
func (it *Item) Image() image.Image { return it.img }

// Fill returns the solid colour, or nil for the palette default.
func (it *Item) Fill() color.Color { return it.fill }

// Label returns the display name.
func (it *Item) Label() string { return it.label }

// URL returns the link target.
func (it *Item) URL() string { return it.url }

// BuildOption configures [Scene.Build].
type BuildOption func(*builder)

type builder struct {
	images   bool
	ringOpts []ring.Option
}

// WithoutImages skips image loading; image elements draw as their colour
// or the palette default.
func WithoutImages() BuildOption { return func(b *builder) { b.images = false } }

// WithRingOptions passes options to [ring.New], e.g. [ring.WithHost].
func WithRingOptions(opts ...ring.Option) BuildOption {
	return func(b *builder) { b.ringOpts = append(b.ringOpts, opts...) }
}

// Build creates a composition laid out in the scene's frame.
func (s *Scene) Build(opts ...BuildOption) (*ring.Composition, error) {
	b := builder{images: true}
	for _, opt := range opts {
		opt(&b)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	ringOpts := append(b.ringOpts, ring.WithFit(s.FitPolicy()), ring.WithGap(s.GapFraction()))
	c := ring.New(ringOpts...)
	c.SetFrame(s.Frame())

	for i, e := range s.Elements {
		it, err := s.item(e, b.images)
		if err != nil {
			return nil, err
		}
		id := ring.NoID
		if e.ID != nil {
			id = *e.ID
		}
		if !c.AddWithID(id, it) {
			return nil, apperr.New(apperr.ErrCodeCapacityExceeded, "element %d: composition is full", i)
		}
	}
	return c, nil
}

func (s *Scene) item(e Element, images bool) (*Item, error) {
	it := &Item{label: e.Label, url: e.URL, width: e.Width, height: e.Height}
	if e.Color != "" {
		c, err := sink.ParseColor(e.Color)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidScene, err, "color")
		}
		it.fill = c
	}
	if e.Image != "" && images {
		img, err := imaging.Open(s.resolve(e.Image), imaging.AutoOrientation(true))
		if err != nil {
			return nil, imageError(e.Image, err)
		}
		it.img = img
	}
	return it, nil
}

func imageError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return apperr.Wrap(apperr.ErrCodeFileNotFound, err, "image %s not found", path)
	}
	if errors.Is(err, image.ErrFormat) {
		return apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "image %s", path)
	}
	return apperr.Wrap(apperr.ErrCodeInternal, err, "image %s", path)
}

// Placeholder returns a scene of n unlabelled, image-less elements.
func Placeholder(n, size int) *Scene {
	s := &Scene{Size: size}
	for i := 0; i < n; i++ {
		s.Elements = append(s.Elements, Element{})
	}
	return s
}

func hashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
