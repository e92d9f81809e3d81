// internal/adapters/redis_adapter/cache_test.go
package redis_a_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis_a "github.com/avashisht/boutique-be/internal/adapters/redis_adapter"
	"github.com/avashisht/boutique-be/internal/core/ports"
	"github.com/avashisht/boutique-be/test/helpers"
)

func newCache(t *testing.T) (*helpers.TestRedis, ports.CacheRepository) {
	t.Helper()
	tr := helpers.SetupTestRedis(t)
	return tr, redis_a.NewCache(tr.Client, time.Hour, helpers.TestLogger().Logger)
}

type samplePayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCache_SetGet(t *testing.T) {
	ctx := context.Background()
	_, cache := newCache(t)

	in := samplePayload{Name: "overview", Count: 3}
	require.NoError(t, cache.Set(ctx, "analytics:overview", in))

	var out samplePayload
	require.NoError(t, cache.Get(ctx, "analytics:overview", &out))
	assert.Equal(t, in, out)
}

func TestCache_GetMiss(t *testing.T) {
	ctx := context.Background()
	_, cache := newCache(t)

	var out samplePayload
	err := cache.Get(ctx, "absent", &out)
	assert.ErrorIs(t, err, redis_a.ErrCacheMiss)
}

func TestCache_SetWithTTL(t *testing.T) {
	ctx := context.Background()
	tr, cache := newCache(t)

	require.NoError(t, cache.SetWithTTL(ctx, "short", samplePayload{Name: "x"}, time.Minute))

	ttl, err := cache.TTL(ctx, "short")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)

	// Expiry is honored.
	tr.Server.FastForward(2 * time.Minute)
	var out samplePayload
	assert.ErrorIs(t, cache.Get(ctx, "short", &out), redis_a.ErrCacheMiss)
}

func TestCache_GetOrSet(t *testing.T) {
	ctx := context.Background()
	_, cache := newCache(t)

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return samplePayload{Name: "computed", Count: calls}, nil
	}

	var first samplePayload
	require.NoError(t, cache.GetOrSet(ctx, "k", &first, fetch, time.Minute))
	assert.Equal(t, 1, first.Count)

	// Second read is served from cache, fetch not invoked again.
	var second samplePayload
	require.NoError(t, cache.GetOrSet(ctx, "k", &second, fetch, time.Minute))
	assert.Equal(t, 1, second.Count)
	assert.Equal(t, 1, calls)
}

func TestCache_GetOrSetFetchError(t *testing.T) {
	ctx := context.Background()
	_, cache := newCache(t)

	var out samplePayload
	err := cache.GetOrSet(ctx, "k", &out, func() (interface{}, error) {
		return nil, errors.New("store down")
	}, time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store down")
}

func TestCache_Delete(t *testing.T) {
	ctx := context.Background()
	_, cache := newCache(t)

	require.NoError(t, cache.Set(ctx, "a", samplePayload{}))
	require.NoError(t, cache.Set(ctx, "b", samplePayload{}))
	require.NoError(t, cache.Delete(ctx, "a", "b"))

	var out samplePayload
	assert.ErrorIs(t, cache.Get(ctx, "a", &out), redis_a.ErrCacheMiss)

	// Deleting nothing is a no-op.
	require.NoError(t, cache.Delete(ctx))
}

func TestCache_DeletePattern(t *testing.T) {
	ctx := context.Background()
	_, cache := newCache(t)

	require.NoError(t, cache.Set(ctx, "analytics:overview", samplePayload{}))
	require.NoError(t, cache.Set(ctx, "analytics:purchases", samplePayload{}))
	require.NoError(t, cache.Set(ctx, "session:123", samplePayload{}))

	require.NoError(t, cache.DeletePattern(ctx, "analytics:*"))

	var out samplePayload
	assert.ErrorIs(t, cache.Get(ctx, "analytics:overview", &out), redis_a.ErrCacheMiss)
	assert.ErrorIs(t, cache.Get(ctx, "analytics:purchases", &out), redis_a.ErrCacheMiss)
	assert.NoError(t, cache.Get(ctx, "session:123", &out))

	// No matches is fine.
	require.NoError(t, cache.DeletePattern(ctx, "export:*"))
}

func TestCache_Ping(t *testing.T) {
	ctx := context.Background()
	tr, cache := newCache(t)

	require.NoError(t, cache.Ping(ctx))

	tr.Server.Close()
	assert.Error(t, cache.Ping(ctx))
}

func TestBuildKey(t *testing.T) {
	assert.Equal(t, "analytics:overview:daily",
		redis_a.BuildKey(redis_a.PrefixAnalytics, "overview", "daily"))
}
