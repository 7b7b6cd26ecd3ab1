// Package cache stores rendered artifacts so repeated exports and previews
// of an unchanged project are served without re-rendering.
//
// Three backends implement [Cache]:
//   - [FileCache]: entries as JSON files under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance, for several preview servers
//   - [NullCache]: stores nothing (caching disabled)
//
// Keys are built by a [Keyer] from content hashes, so a cache entry can
// never be served for a different project state.
//
//	c, err := cache.NewFileCache(dir)
//	key := cache.NewDefaultKeyer().ExportKey(cache.Hash(archive), "html")
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    return data
//	}
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per artifact kind.
const (
	ExportTTL   = 7 * 24 * time.Hour
	FrameTTL    = 24 * time.Hour
	TimelineTTL = 30 * 24 * time.Hour
)
