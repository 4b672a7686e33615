// Package cache provides the key-value cache used to memoize read paths
// and to blacklist revoked access tokens. Entries are serialized values
// with a TTL; the cache is advisory: a miss just recomputes, and a stale
// entry is bounded by its TTL.
package cache

import (
	"context"
	"time"
)

// NoExpiration marks an entry that lives until explicitly deleted.
const NoExpiration time.Duration = -1

// Cache is a TTL key-value store. Implementations must be safe for
// concurrent use. The context parameter exists so that a networked
// backend can honor cancellation; the in-memory implementation ignores it.
type Cache interface {
	// Get returns the value stored under key and whether it was present
	// and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key for the given TTL. A non-positive TTL
	// other than NoExpiration falls back to the implementation default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Delete removes the entry under key, if any.
	Delete(ctx context.Context, key string)

	// DeletePrefix removes every entry whose key starts with prefix and
	// returns the number of entries removed. This is the indiscriminate
	// scan-and-delete used to invalidate all cached list pages on writes:
	// coarse on purpose, correctness over precision.
	DeletePrefix(ctx context.Context, prefix string) int
}
