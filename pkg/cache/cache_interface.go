package cache

import (
	"context"
	"time"
)

// Cache is the contract for the cache layer, so implementations can be
// swapped (Redis in production, in-memory in tests).
type Cache interface {
	// Get reads a key into dest. found=false means cache miss and dest is
	// left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores a value with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys from the cache.
	Delete(ctx context.Context, keys ...string) error

	// Increment atomically increments a counter key.
	Increment(ctx context.Context, key string) (int64, error)

	// Ping checks the connection.
	Ping(ctx context.Context) error
}
