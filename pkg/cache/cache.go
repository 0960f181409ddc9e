// Package cache provides byte-oriented caches for computed artifacts.
//
// The pipeline uses a cache to skip re-rendering artifacts whose inputs
// hash to a previously seen key. Three backends are provided:
//   - FileCache: directory-backed, for CLI usage (XDG cache dir)
//   - RedisCache: shared cache for multi-instance deployments
//   - NullCache: disabled caching, for tests and --no-cache
//
// Keys are derived from content hashes (see Key and Hash), so identical
// inputs always map to the same entry and stale entries are simply never
// addressed again.
package cache

import (
	"context"
	"time"
)

// TTLs for cached entries. Artifacts are derived purely from their inputs,
// so expiry exists only to bound disk usage, not for correctness.
const (
	// TTLArtifact is the lifetime of rendered export artifacts.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the interface all backends implement.
//
// Get returns (data, true, nil) on a hit and (nil, false, nil) on a miss;
// the error return is reserved for backend failures. A ttl of zero on Set
// stores the entry without expiration.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
