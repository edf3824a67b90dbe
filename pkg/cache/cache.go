// Package cache stores rendered avatar artifacts and layout results.
//
// Two backends cover the ways avatarstack runs:
//   - [FileCache]: a directory of JSON entries for the CLI (~/.cache/avatarstack)
//   - [RedisCache]: a shared Redis instance for the HTTP server
//
// [NullCache] disables caching. Keys are derived by a [Keyer]; the server
// wraps it in a [ScopedKeyer] to namespace entries per deployment.
package cache

import (
	"context"
	"time"
)

// Default TTLs for cached entries.
const (
	LayoutTTL   = 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiration.
type Cache interface {
	// Get returns the cached data and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// LayoutKeyOpts are the inputs that change a computed layout.
type LayoutKeyOpts struct {
	Size  float64 `json:"size"`
	Count int     `json:"count"`
	Fit   string  `json:"fit"`
	Gap   float64 `json:"gap"`
}

// ArtifactKeyOpts are the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	Scale     float64 `json:"scale,omitempty"`
	Precision int     `json:"precision,omitempty"`
	Debug     bool    `json:"debug,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies a layout computed from opts alone.
	LayoutKey(opts LayoutKeyOpts) string
	// ArtifactKey identifies an artifact rendered from a scene.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<hash>".
func (DefaultKeyer) LayoutKey(opts LayoutKeyOpts) string {
	return hashKey("layout", opts)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sceneHash, opts)
}
