package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/avatarstack/internal/server"
	"github.com/matzehuels/avatarstack/pkg/buildinfo"
	"github.com/matzehuels/avatarstack/pkg/cache"
	"github.com/matzehuels/avatarstack/pkg/observability"
	"github.com/matzehuels/avatarstack/pkg/pipeline"
)

// Environment fallbacks for serve flags.
const (
	envAddr  = "AVATARSTACK_ADDR"
	envRedis = "AVATARSTACK_REDIS"
	envScope = "AVATARSTACK_CACHE_SCOPE"
)

const redisPrefix = appName + ":"

type serveOpts struct {
	addr    string
	redis   string
	scope   string
	noCache bool
	maxBody int64
}

// serveCommand creates the command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render API over HTTP",
		Long: `Serve the render API over HTTP.

Artifacts are cached in redis when --redis (or ` + envRedis + `) is set and
in the local cache directory otherwise. --cache-scope (or ` + envScope + `)
namespaces cache keys so several deployments can share one redis. The listen
address falls back to ` + envAddr + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.addr = envOr(opts.addr, envAddr, server.DefaultAddr)
			opts.redis = envOr(opts.redis, envRedis, "")
			opts.scope = envOr(opts.scope, envScope, "")
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default "+server.DefaultAddr+")")
	cmd.Flags().StringVar(&opts.redis, "redis", "", "redis URL for the artifact cache, e.g. redis://localhost:6379/0")
	cmd.Flags().StringVar(&opts.scope, "cache-scope", "", "namespace for cache keys, e.g. staging")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().Int64Var(&opts.maxBody, "max-body", server.DefaultMaxBodyBytes, "maximum request body in bytes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	store, err := c.serveCache(ctx, opts)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(store, serveKeyer(opts.scope), c.Logger)
	defer runner.Close()

	observability.SetCacheHooks(cacheLogHooks{logger: c.Logger})
	defer observability.Reset()

	srv := server.New(server.Config{
		Addr:         opts.addr,
		Runner:       runner,
		Logger:       c.Logger,
		MaxBodyBytes: opts.maxBody,
	})
	c.Logger.Info("starting "+appName, "version", buildinfo.Version, "commit", buildinfo.ShortCommit(), "addr", srv.Addr(), "scope", opts.scope)

	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func (c *CLI) serveCache(ctx context.Context, opts serveOpts) (cache.Cache, error) {
	if opts.redis != "" && opts.noCache {
		printWarning("--redis is ignored with --no-cache")
	}
	if opts.redis != "" && !opts.noCache {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: opts.redis, Prefix: redisPrefix})
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		c.Logger.Info("using redis cache")
		return rc, nil
	}
	return newCache(opts.noCache)
}

// serveKeyer returns the default keyer, scoped when scope is set.
func serveKeyer(scope string) cache.Keyer {
	if scope == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), scope+":")
}

// envOr returns v, or the environment variable key, or def.
func envOr(v, key, def string) string {
	if v != "" {
		return v
	}
	if e := os.Getenv(key); e != "" {
		return e
	}
	return def
}

// cacheLogHooks logs cache traffic at debug level.
type cacheLogHooks struct {
	logger *log.Logger
}

func (h cacheLogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h cacheLogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h cacheLogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
