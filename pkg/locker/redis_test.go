package locker

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testLockKey = "lookup-lock:movie_thematrix"

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	// Create an in-memory Redis instance for testing
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}

	return client, cleanup
}

func TestRedisLocker_Acquire_Success(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	logger := zap.NewNop()
	locker := NewRedisLocker(client, logger)

	ctx := context.Background()
	key := testLockKey
	ttl := 5 * time.Second

	// First acquisition should succeed
	acquired, err := locker.Acquire(ctx, key, ttl)
	require.NoError(t, err)
	assert.True(t, acquired, "First acquisition should succeed")
}

func TestRedisLocker_Acquire_AlreadyHeld(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	logger := zap.NewNop()
	locker1 := NewRedisLocker(client, logger)
	locker2 := NewRedisLocker(client, logger)

	ctx := context.Background()
	key := testLockKey
	ttl := 5 * time.Second

	// First locker acquires the lock
	acquired1, err := locker1.Acquire(ctx, key, ttl)
	require.NoError(t, err)
	assert.True(t, acquired1, "First acquisition should succeed")

	// Contention is reported as false, not as an error.
	acquired2, err := locker2.Acquire(ctx, key, ttl)
	require.NoError(t, err)
	assert.False(t, acquired2, "Second acquisition should fail when lock is held")
}

func TestRedisLocker_Release_Success(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	logger := zap.NewNop()
	locker := NewRedisLocker(client, logger)

	ctx := context.Background()
	key := testLockKey
	ttl := 5 * time.Second

	// Acquire lock
	acquired, err := locker.Acquire(ctx, key, ttl)
	require.NoError(t, err)
	require.True(t, acquired)

	// Release lock
	err = locker.Release(ctx, key)
	require.NoError(t, err)

	// Should be able to acquire again after release
	acquired2, err := locker.Acquire(ctx, key, ttl)
	require.NoError(t, err)
	assert.True(t, acquired2, "Should be able to acquire after release")
}

func TestRedisLocker_Release_NotOwned(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	logger := zap.NewNop()
	locker1 := NewRedisLocker(client, logger)
	locker2 := NewRedisLocker(client, logger)

	ctx := context.Background()
	key := testLockKey
	ttl := 5 * time.Second

	// Locker1 acquires the lock
	acquired, err := locker1.Acquire(ctx, key, ttl)
	require.NoError(t, err)
	require.True(t, acquired)

	// Locker2 tries to release (should not error, but won't release)
	err = locker2.Release(ctx, key)
	require.NoError(t, err)

	// Locker1 should still be able to release (lock still held)
	err = locker1.Release(ctx, key)
	require.NoError(t, err)
}

func TestRedisLocker_ConcurrentAcquisition(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	logger := zap.NewNop()
	key := testLockKey
	ttl := 2 * time.Second

	// Simulate 5 instances trying to acquire the lock concurrently
	const numInstances = 5
	results := make(chan bool, numInstances)
	ctx := context.Background()

	for i := 0; i < numInstances; i++ {
		go func() {
			locker := NewRedisLocker(client, logger)
			acquired, _ := locker.Acquire(ctx, key, ttl)
			results <- acquired
		}()
	}

	// Collect results
	successCount := 0
	for i := 0; i < numInstances; i++ {
		if <-results {
			successCount++
		}
	}

	// Exactly one instance should have acquired the lock
	assert.Equal(t, 1, successCount, "Exactly one instance should acquire the lock")
}

func TestRedisLocker_ContextCancellation(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	logger := zap.NewNop()
	locker := NewRedisLocker(client, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	key := testLockKey
	ttl := 5 * time.Second

	// Acquire should fail due to canceled context
	acquired, err := locker.Acquire(ctx, key, ttl)
	assert.Error(t, err)
	assert.False(t, acquired)
}

func TestRedisLocker_LockExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	logger := zap.NewNop()
	holder := NewRedisLocker(client, logger)
	peer := NewRedisLocker(client, logger)
	ctx := context.Background()

	acquired, err := holder.Acquire(ctx, testLockKey, time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	// The holder crashed without releasing.
	mr.FastForward(2 * time.Second)

	acquired, err = peer.Acquire(ctx, testLockKey, time.Second)
	require.NoError(t, err)
	assert.True(t, acquired, "an expired lock can be taken by a peer")

	// The stale holder releasing must not free the peer's lock.
	require.NoError(t, holder.Release(ctx, testLockKey))
	assert.True(t, mr.Exists(testLockKey))
}

func TestRedisLocker_Release_Unknown(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	locker := NewRedisLocker(client, zap.NewNop())

	assert.NoError(t, locker.Release(context.Background(), "never-acquired"))
}
