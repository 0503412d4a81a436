// Package cache provides byte caches for layout results and previews.
//
// Three backends implement [Cache]:
//   - [FileCache]: JSON entry files under a directory, used by the CLI
//   - [RedisCache]: a shared Redis instance, used by the HTTP server and
//     by CLI runs that opt in with --redis
//   - [NullCache]: stores nothing, used when caching is disabled
//
// Keys are produced by a [Keyer] so callers never build them by hand:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.LayoutKey(cache.Hash(input), cache.LayoutKeyOpts{Format: "yaml"})
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored bytes and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs. Layouts are a pure function of the input bytes, so entries
// only expire to bound disk and memory use.
const (
	TTLLayout  = 7 * 24 * time.Hour
	TTLPreview = 7 * 24 * time.Hour
)

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}
