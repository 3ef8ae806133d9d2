package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onboardiq/onboardiq/internal/domain"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisCacheFromClient(client), mr
}

func TestRedisCache_SetAndGet(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	err := cache.Set(ctx, "qa:abc123", []byte(`{"answer":"use the wiki"}`), time.Hour)
	require.NoError(t, err)

	value, err := cache.Get(ctx, "qa:abc123")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"answer":"use the wiki"}`), value)
}

func TestRedisCache_GetMissingKey(t *testing.T) {
	cache, _ := newTestCache(t)

	value, err := cache.Get(context.Background(), "qa:missing")

	assert.Nil(t, value)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestRedisCache_Expiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "vectorization_stats", []byte(`{"total_chunks":42}`), time.Hour))

	mr.FastForward(time.Hour + time.Second)

	_, err := cache.Get(ctx, "vectorization_stats")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestRedisCache_Delete(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "qa:old", []byte("stale"), 0))
	require.NoError(t, cache.Delete(ctx, "qa:old"))

	_, err := cache.Get(ctx, "qa:old")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	// deleting again is not an error
	assert.NoError(t, cache.Delete(ctx, "qa:old"))
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "not-a-url")
	assert.Error(t, err)
}

func TestNoOpCache(t *testing.T) {
	cache := NewNoOpCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "anything", []byte("value"), time.Minute))

	_, err := cache.Get(ctx, "anything")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	assert.NoError(t, cache.Delete(ctx, "anything"))
}
