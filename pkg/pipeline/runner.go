package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/avatarstack/pkg/cache"
	apperr "github.com/matzehuels/avatarstack/pkg/errors"
	"github.com/matzehuels/avatarstack/pkg/observability"
	"github.com/matzehuels/avatarstack/pkg/ring/layout"
	"github.com/matzehuels/avatarstack/pkg/ring/sink"
	"github.com/matzehuels/avatarstack/pkg/scene"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger, so multiple
// goroutines can share one.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Render renders every requested format of s. Cached artifacts are reused
// unless opts.Refresh is set; the scene is only laid out when at least one
// format misses.
func (r *Runner) Render(ctx context.Context, s *scene.Scene, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if opts.SkipImages && s.HasImages() {
		return nil, apperr.New(apperr.ErrCodeUnsupported, "scene references image files")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.Hash()
	if err != nil {
		return nil, err
	}

	result := &Result{
		ID:        uuid.NewString(),
		SceneHash: hash,
		Artifacts: make(map[string][]byte, len(opts.Formats)),
		CacheInfo: CacheInfo{Hits: make(map[string]bool, len(opts.Formats))},
	}
	logger := r.Logger.With("render", result.ID)

	var missing []string
	for _, format := range opts.Formats {
		if data, ok := r.lookup(ctx, hash, format, opts); ok {
			result.Artifacts[format] = data
			result.CacheInfo.Hits[format] = true
			continue
		}
		missing = append(missing, format)
	}
	result.CacheInfo.RenderHit = len(missing) == 0
	if result.CacheInfo.RenderHit {
		logger.Debug("all artifacts cached", "formats", opts.Formats)
		return result, nil
	}

	// Layout
	hooks := observability.Pipeline()
	layoutStart := time.Now()
	hooks.OnLayoutStart(ctx, s.SlotCount())
	snap, err := build(s, opts)
	result.Stats.LayoutTime = time.Since(layoutStart)
	hooks.OnLayoutComplete(ctx, s.SlotCount(), result.Stats.LayoutTime, err)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Snapshot = snap
	result.Stats.Slots = len(snap.Slots)

	logger.Debug("computed layout",
		"slots", len(snap.Slots),
		"radius", snap.Radius,
		"duration", result.Stats.LayoutTime)

	// Render
	renderStart := time.Now()
	hooks.OnRenderStart(ctx, missing)
	for _, format := range missing {
		data, err := RenderSnapshot(ctx, snap, format, s.Background, hash, opts)
		if err != nil {
			hooks.OnRenderComplete(ctx, missing, time.Since(renderStart), err)
			return nil, formatError(format, err)
		}
		result.Artifacts[format] = data
		r.store(ctx, r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format)), "artifact", data, cache.ArtifactTTL)
	}
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, missing, result.Stats.RenderTime, nil)

	logger.Info("rendered avatar",
		"formats", opts.Formats,
		"cached", len(opts.Formats)-len(missing),
		"duration", result.Stats.LayoutTime+result.Stats.RenderTime)

	return result, nil
}

// Layout returns the JSON layout of req.Count placeholder elements and
// whether it came from the cache.
func (r *Runner) Layout(ctx context.Context, req LayoutRequest) ([]byte, bool, error) {
	if err := req.Validate(); err != nil {
		return nil, false, err
	}
	fit := layout.DefaultFit
	if req.Fit != "" {
		f, err := layout.ParseFit(req.Fit)
		if err != nil {
			return nil, false, apperr.Wrap(apperr.ErrCodeInvalidFit, err, "invalid fit")
		}
		fit = f
	}

	key := r.Keyer.LayoutKey(req.keyOpts(fit.String()))
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "layout")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	gap := req.Gap
	s := scene.Placeholder(req.Count, req.Size)
	s.Fit = fit.String()
	s.Gap = &gap
	c, err := s.Build()
	if err != nil {
		return nil, false, err
	}
	data, err := sink.RenderJSON(c.Snapshot(), sink.WithIndent())
	if err != nil {
		return nil, false, err
	}
	r.store(ctx, key, "layout", data, cache.LayoutTTL)
	return data, false, nil
}

func (r *Runner) lookup(ctx context.Context, hash, format string, opts Options) ([]byte, bool) {
	if opts.Refresh {
		return nil, false
	}
	key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "format", format, "error", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "artifact")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "artifact")
	return data, true
}

func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
