// internal/core/ports/cache.go
package ports

import (
	"context"
	"time"
)

// CacheRepository is the analytics result cache. All operations are
// best-effort: a cache failure degrades to recomputing the aggregation, it
// never fails a request.
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}) error
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error

	// GetOrSet returns the cached value or computes, stores and returns
	// a fresh one.
	GetOrSet(ctx context.Context, key string, dest interface{},
		fetch func() (interface{}, error), ttl time.Duration) error

	TTL(ctx context.Context, key string) (time.Duration, error)
	Ping(ctx context.Context) error
}
