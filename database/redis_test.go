package database

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTestRedis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { RedisClient = nil })
}

func TestLock_AcquireAndRelease(t *testing.T) {
	withTestRedis(t)
	ctx := context.Background()

	locked, err := NewLock(ctx, "lock:test", "owner-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, locked)

	// Second acquisition fails while held.
	locked, err = NewLock(ctx, "lock:test", "owner-2", time.Minute)
	require.NoError(t, err)
	assert.False(t, locked)

	require.NoError(t, ReleaseLock(ctx, "lock:test", "owner-1"))

	locked, err = NewLock(ctx, "lock:test", "owner-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestReleaseLock_RejectsNonOwner(t *testing.T) {
	withTestRedis(t)
	ctx := context.Background()

	locked, err := NewLock(ctx, "lock:test", "owner-1", time.Minute)
	require.NoError(t, err)
	require.True(t, locked)

	assert.Error(t, ReleaseLock(ctx, "lock:test", "someone-else"))

	// Still held by the owner.
	locked, err = NewLock(ctx, "lock:test", "owner-2", time.Minute)
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestLock_UninitializedClient(t *testing.T) {
	RedisClient = nil

	_, err := NewLock(context.Background(), "lock:test", "v", time.Minute)
	assert.Error(t, err)

	assert.Error(t, ReleaseLock(context.Background(), "lock:test", "v"))
}
