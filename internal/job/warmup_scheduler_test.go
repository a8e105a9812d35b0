package job

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"media-search-service/internal/app/service"
	"media-search-service/internal/metrics"
	"media-search-service/pkg/locker"
)

type fakeWarmer struct {
	runs    atomic.Int32
	outcome string
}

func (w *fakeWarmer) WarmAll(_ context.Context) []service.WarmResult {
	w.runs.Add(1)

	r := service.WarmResult{Name: "The Matrix", Outcome: w.outcome}
	if w.outcome == metrics.OutcomeError {
		r.Error = errors.New("upstream down")
	}

	return []service.WarmResult{r}
}

func newTestLocker(t *testing.T) *locker.RedisLocker {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return locker.NewRedisLocker(client, zap.NewNop())
}

func TestWarmupScheduler_RunsOnStartAndTick(t *testing.T) {
	w := &fakeWarmer{outcome: metrics.OutcomeFound}
	s := NewWarmupScheduler(w, WarmupConfig{Interval: 30 * time.Millisecond}, zap.NewNop(), nil)

	s.Start()
	require.Eventually(t, func() bool { return w.runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	runs := w.runs.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, runs, w.runs.Load(), "no passes after Stop")
}

func TestWarmupScheduler_StopWithoutStart(t *testing.T) {
	s := NewWarmupScheduler(&fakeWarmer{}, WarmupConfig{Interval: time.Second}, zap.NewNop(), nil)

	assert.NotPanics(t, s.Stop)
}

func TestWarmupScheduler_SkipsWhenPeerHoldsLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	peer := locker.NewRedisLocker(client, zap.NewNop())
	acquired, err := peer.Acquire(context.Background(), warmupLockKey, time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	w := &fakeWarmer{outcome: metrics.OutcomeFound}
	s := NewWarmupScheduler(w, WarmupConfig{Interval: time.Minute}, zap.NewNop(), locker.NewRedisLocker(client, zap.NewNop()))
	s.ctx = context.Background()

	s.execute()

	assert.Equal(t, int32(0), w.runs.Load())
}

func TestWarmupScheduler_CooldownAfterCleanPass(t *testing.T) {
	l := newTestLocker(t)
	w := &fakeWarmer{outcome: metrics.OutcomeFound}

	s := NewWarmupScheduler(w, WarmupConfig{Interval: time.Minute}, zap.NewNop(), l)
	s.ctx = context.Background()

	s.execute()
	s.execute()

	assert.Equal(t, int32(1), w.runs.Load(), "the lock is kept for the interval after a clean pass")
}

func TestWarmupScheduler_ReleasesLockAfterFailures(t *testing.T) {
	l := newTestLocker(t)
	w := &fakeWarmer{outcome: metrics.OutcomeError}

	s := NewWarmupScheduler(w, WarmupConfig{Interval: time.Minute, Timeout: time.Second}, zap.NewNop(), l)
	s.ctx = context.Background()

	s.execute()
	s.execute()

	assert.Equal(t, int32(2), w.runs.Load(), "a failed pass frees the lock for an immediate retry")
}
