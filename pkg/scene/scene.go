package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	apperr "github.com/matzehuels/avatarstack/pkg/errors"
	"github.com/matzehuels/avatarstack/pkg/ring"
	"github.com/matzehuels/avatarstack/pkg/ring/layout"
	"github.com/matzehuels/avatarstack/pkg/ring/sink"
)

// DefaultSize is the frame side used when a scene omits size.
const DefaultSize = 128

// Format is a scene file encoding.
type Format string

// Supported scene formats.
const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", apperr.New(apperr.ErrCodeInvalidFormat, "unsupported scene extension %q (want .toml or .json)", filepath.Ext(path))
	}
}

// Scene describes one avatar: its frame, ring settings, and elements.
type Scene struct {
	Size       int       `toml:"size,omitempty" json:"size,omitempty"`
	Padding    int       `toml:"padding,omitempty" json:"padding,omitempty"`
	Fit        string    `toml:"fit,omitempty" json:"fit,omitempty"`
	Gap        *float64  `toml:"gap,omitempty" json:"gap,omitempty"`
	Background string    `toml:"background,omitempty" json:"background,omitempty"`
	Elements   []Element `toml:"elements" json:"elements"`

	// dir is the directory image paths are resolved against.
	dir string
}

// Element is one person or thing in the ring.
type Element struct {
	ID     *int   `toml:"id,omitempty" json:"id,omitempty"`
	Label  string `toml:"label,omitempty" json:"label,omitempty"`
	Image  string `toml:"image,omitempty" json:"image,omitempty"`
	Color  string `toml:"color,omitempty" json:"color,omitempty"`
	URL    string `toml:"url,omitempty" json:"url,omitempty"`
	Width  int    `toml:"width,omitempty" json:"width,omitempty"`
	Height int    `toml:"height,omitempty" json:"height,omitempty"`
}

// Load reads a scene file. Image paths resolve relative to its directory.
func Load(path string) (*Scene, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "scene %s not found", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.dir = filepath.Dir(path)
	return s, nil
}

// Decode reads a scene from r. Unknown keys are rejected. The result is
// validated.
func Decode(r io.Reader, format Format) (*Scene, error) {
	var s Scene
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&s)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidScene, err, "decode toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, apperr.New(apperr.ErrCodeInvalidScene, "unknown key %q", undecoded[0].String())
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidScene, err, "decode json")
		}
	default:
		return nil, apperr.New(apperr.ErrCodeInvalidFormat, "unsupported scene format %q", format)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Encode writes s to w.
func Encode(w io.Writer, s *Scene, format Format) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(s)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	default:
		return apperr.New(apperr.ErrCodeInvalidFormat, "unsupported scene format %q", format)
	}
}

// Dir returns the directory image paths resolve against.
func (s *Scene) Dir() string { return s.dir }

// SetDir sets the directory image paths resolve against.
func (s *Scene) SetDir(dir string) { s.dir = dir }

// FrameSize returns the frame side, applying the default.
func (s *Scene) FrameSize() int {
	if s.Size == 0 {
		return DefaultSize
	}
	return s.Size
}

// Frame returns the frame the ring is laid out in.
func (s *Scene) Frame() ring.Frame {
	return ring.Square(s.FrameSize(), s.Padding)
}

// FitPolicy returns the parsed fit, applying the default.
func (s *Scene) FitPolicy() layout.Fit {
	if s.Fit == "" {
		return layout.DefaultFit
	}
	f, err := layout.ParseFit(s.Fit)
	if err != nil {
		return layout.DefaultFit
	}
	return f
}

// GapFraction returns the gap, applying the default.
func (s *Scene) GapFraction() float64 {
	if s.Gap == nil {
		return ring.DefaultGap
	}
	return *s.Gap
}

// HasImages reports whether any element references an image file.
func (s *Scene) HasImages() bool {
	for _, e := range s.Elements {
		if e.Image != "" {
			return true
		}
	}
	return false
}

// SlotCount returns the number of slots the scene fills once elements with
// repeated ids have replaced each other.
func (s *Scene) SlotCount() int {
	ids := make(map[int]bool)
	n := 0
	for _, e := range s.Elements {
		if e.ID == nil {
			n++
		} else if !ids[*e.ID] {
			ids[*e.ID] = true
			n++
		}
	}
	return n
}

// Validate checks the scene without touching the filesystem.
func (s *Scene) Validate() error {
	if s.Size < 0 {
		return apperr.New(apperr.ErrCodeInvalidSize, "size cannot be negative: %d", s.Size)
	}
	if err := apperr.ValidateContentSize(float64(s.FrameSize())); err != nil {
		return err
	}
	if s.Padding < 0 {
		return apperr.New(apperr.ErrCodeInvalidSize, "padding cannot be negative: %d", s.Padding)
	}
	if s.Fit != "" {
		if _, err := layout.ParseFit(s.Fit); err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidFit, err, "invalid fit")
		}
	}
	if s.Gap != nil {
		if err := apperr.ValidateGap(*s.Gap); err != nil {
			return err
		}
	}
	if s.Background != "" {
		if _, err := sink.ParseColor(s.Background); err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidScene, err, "background")
		}
	}
	if n := s.SlotCount(); n > ring.MaxSlots {
		return apperr.New(apperr.ErrCodeInvalidScene, "scene fills %d slots, max is %d", n, ring.MaxSlots)
	}

	for i, e := range s.Elements {
		if err := e.validate(); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

func (e Element) validate() error {
	if e.ID != nil && *e.ID < 0 {
		return apperr.New(apperr.ErrCodeInvalidScene, "id cannot be negative: %d", *e.ID)
	}
	if e.Image != "" {
		if err := apperr.ValidatePath(e.Image); err != nil {
			return err
		}
	}
	if e.Color != "" {
		if _, err := sink.ParseColor(e.Color); err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidScene, err, "color")
		}
	}
	if e.Width < 0 || e.Height < 0 {
		return apperr.New(apperr.ErrCodeInvalidSize, "width and height cannot be negative")
	}
	return nil
}

// Hash returns a content hash of the scene and every image it references,
// for use in cache keys.
func (s *Scene) Hash() (string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(s); err != nil {
		return "", fmt.Errorf("encode scene: %w", err)
	}
	for _, e := range s.Elements {
		if e.Image == "" {
			continue
		}
		data, err := os.ReadFile(s.resolve(e.Image))
		if err != nil {
			return "", imageError(e.Image, err)
		}
		buf.WriteString(e.Image)
		buf.Write(data)
	}
	return hashBytes(buf.Bytes()), nil
}

func (s *Scene) resolve(path string) string {
	return filepath.Join(s.dir, filepath.FromSlash(path))
}
