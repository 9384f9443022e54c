package cache

import (
	"ClinicQueue/database"
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	database.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { database.RedisClient = nil })

	cache, err := NewCache()
	require.NoError(t, err)
	return cache, mr
}

func TestCache_SetGet(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", "v", time.Minute))

	value, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)
}

func TestCache_GetMissingReturnsNil(t *testing.T) {
	cache, _ := newTestCache(t)

	_, err := cache.Get(context.Background(), "absent")

	assert.ErrorIs(t, err, redis.Nil)
}

func TestCache_Delete(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, cache.Delete(ctx, "k"))

	_, err := cache.Get(ctx, "k")
	assert.ErrorIs(t, err, redis.Nil)
}

func TestCache_DeleteAllByPattern(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "appointments_cache:a", "1", 0))
	require.NoError(t, cache.Set(ctx, "appointments_cache:b", "2", 0))
	require.NoError(t, cache.Set(ctx, "patient_cache:p", "3", 0))

	require.NoError(t, cache.DeleteAll(ctx, "appointments_cache*"))

	_, err := cache.Get(ctx, "appointments_cache:a")
	assert.ErrorIs(t, err, redis.Nil)
	_, err = cache.Get(ctx, "appointments_cache:b")
	assert.ErrorIs(t, err, redis.Nil)

	kept, err := cache.Get(ctx, "patient_cache:p")
	require.NoError(t, err)
	assert.Equal(t, "3", kept)
}

func TestCache_DeleteBatch(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", "1", 0))
	require.NoError(t, cache.Set(ctx, "b", "2", 0))

	require.NoError(t, cache.DeleteBatch(ctx, "a", "b"))

	_, err := cache.Get(ctx, "a")
	assert.ErrorIs(t, err, redis.Nil)
}

func TestCache_Expiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", "v", time.Second))
	mr.FastForward(2 * time.Second)

	_, err := cache.Get(ctx, "k")
	assert.ErrorIs(t, err, redis.Nil)
}
