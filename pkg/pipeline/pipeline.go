// Package pipeline turns scenes into rendered avatars.
//
// This package implements the build → layout → render pipeline shared by the
// CLI and the HTTP server, so both cache and report the same way.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Render(ctx, scn, pipeline.Options{
//	    Formats: []string{"svg", "png"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// Artifacts are cached per format under the scene's content hash, so a
// scene whose images have not changed is never laid out twice.
package pipeline

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/avatarstack/pkg/cache"
	apperr "github.com/matzehuels/avatarstack/pkg/errors"
	"github.com/matzehuels/avatarstack/pkg/ring"
	"github.com/matzehuels/avatarstack/pkg/ring/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0

	// MaxScale bounds the PNG multiplier.
	MaxScale = 8.0
)

// Format constants for output formats.
const (
	FormatSVG   = "svg"
	FormatPNG   = "png"
	FormatJSON  = "json"
	FormatDOT   = "dot"
	FormatGraph = "graph"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:   true,
	FormatPNG:   true,
	FormatJSON:  true,
	FormatDOT:   true,
	FormatGraph: true,
}

// ContentTypes maps formats to MIME types.
var ContentTypes = map[string]string{
	FormatSVG:   "image/svg+xml",
	FormatPNG:   "image/png",
	FormatJSON:  "application/json",
	FormatDOT:   "text/vnd.graphviz",
	FormatGraph: "image/svg+xml",
}

// Extension returns the file extension written for format.
func Extension(format string) string {
	if format == FormatGraph {
		return ".graph.svg"
	}
	return "." + format
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a render. It supports JSON for API requests.
type Options struct {
	Formats   []string `json:"formats,omitempty"`
	Scale     float64  `json:"scale,omitempty"`
	Precision int      `json:"precision,omitempty"`
	Debug     bool     `json:"debug,omitempty"`

	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// SkipImages rejects scenes that reference image files. The server
	// sets it since request bodies cannot carry files.
	SkipImages bool `json:"-"`
}

// Result contains the outputs of a render.
type Result struct {
	// ID identifies this render in logs and response headers.
	ID string

	// SceneHash is the content hash of the scene and its images.
	SceneHash string

	// Snapshot is the laid-out geometry. It is zero when every artifact
	// came from the cache.
	Snapshot ring.Snapshot

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains render timings.
type Stats struct {
	Slots      int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks which artifacts came from the cache.
type CacheInfo struct {
	Hits      map[string]bool
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperr.New(apperr.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(FormatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// FormatNames returns the supported formats in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// ValidateAndSetDefaults checks options and applies defaults. Duplicate
// formats are dropped.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.Formats = slices.Compact(slices.Sorted(slices.Values(o.Formats)))

	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 || o.Scale > MaxScale {
		return apperr.New(apperr.ErrCodeInvalidInput, "scale must be in (0, %v], got %v", MaxScale, o.Scale)
	}
	if o.Precision == 0 {
		o.Precision = sink.DefaultPrecision
	}
	if o.Precision < 1 || o.Precision > 1000 {
		return apperr.New(apperr.ErrCodeInvalidInput, "precision must be in [1, 1000], got %d", o.Precision)
	}
	return nil
}

// ArtifactKeyOpts returns cache key options for one format. Options that do
// not affect a format are left out so they do not split its cache entries.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Debug: o.Debug}
	switch format {
	case FormatPNG:
		k.Scale = o.Scale
	case FormatSVG:
		k.Precision = o.Precision
	}
	return k
}

// LayoutRequest describes a layout of image-less placeholder elements.
type LayoutRequest struct {
	Size  int
	Count int
	Fit   string
	Gap   float64
}

// Validate checks the request.
func (r LayoutRequest) Validate() error {
	if err := apperr.ValidateContentSize(float64(r.Size)); err != nil {
		return err
	}
	if r.Count < 0 || r.Count > ring.MaxSlots {
		return apperr.New(apperr.ErrCodeInvalidInput, "count must be in [0, %d], got %d", ring.MaxSlots, r.Count)
	}
	if err := apperr.ValidateGap(r.Gap); err != nil {
		return err
	}
	return nil
}

func (r LayoutRequest) keyOpts(fit string) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Size: float64(r.Size), Count: r.Count, Fit: fit, Gap: r.Gap}
}

func formatError(format string, err error) error {
	return fmt.Errorf("render %s: %w", format, err)
}
