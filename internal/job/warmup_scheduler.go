// Package job provides background job schedulers.
package job

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"media-search-service/internal/app/service"
	"media-search-service/internal/metrics"
	"media-search-service/pkg/locker"
)

const warmupLockKey = "warmup:scheduler:lock"

// Warmer runs one warm-up pass.
type Warmer interface {
	WarmAll(ctx context.Context) []service.WarmResult
}

// WarmupScheduler periodically re-resolves the configured titles so they stay
// cached. With a locker, only one instance sharing the cache warms per interval.
type WarmupScheduler struct {
	warmer   Warmer
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
	locker   locker.DistributedLocker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// WarmupConfig holds warm-up scheduler configuration.
type WarmupConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// NewWarmupScheduler creates a new WarmupScheduler. locker may be nil when the
// cache is private to this process.
func NewWarmupScheduler(
	warmer Warmer,
	cfg WarmupConfig,
	logger *zap.Logger,
	locker locker.DistributedLocker,
) *WarmupScheduler {
	return &WarmupScheduler{
		warmer:   warmer,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		logger:   logger,
		locker:   locker,
	}
}

// Start runs a warm-up pass immediately and then every interval.
func (s *WarmupScheduler) Start() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.logger.Info("starting warm-up scheduler",
		zap.Duration("interval", s.interval),
		zap.Bool("distributed", s.locker != nil),
	)

	s.wg.Add(1)
	go s.run()
}

// Stop gracefully stops the scheduler, waiting for a running pass to finish.
func (s *WarmupScheduler) Stop() {
	if s.cancel == nil {
		return
	}

	s.logger.Info("stopping warm-up scheduler")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("warm-up scheduler stopped")
}

func (s *WarmupScheduler) run() {
	defer s.wg.Done()

	s.execute()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.execute()
		}
	}
}

// execute performs one pass. The lock TTL is the interval: after a clean pass
// the lock is kept as a cooldown so peers skip this round; after failures it
// is released so another instance can retry right away.
func (s *WarmupScheduler) execute() {
	if s.locker != nil {
		acquired, err := s.locker.Acquire(s.ctx, warmupLockKey, s.interval)
		if err != nil {
			s.logger.Error("failed to acquire warm-up lock", zap.Error(err))
			return
		}
		if !acquired {
			s.logger.Debug("another instance is warming the cache, skipping")
			return
		}
	}

	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, s.timeout)
		defer cancel()
	}

	results := s.warmer.WarmAll(ctx)

	failed := 0
	for _, r := range results {
		if r.Outcome == metrics.OutcomeError {
			failed++
		}
	}

	if failed > 0 && s.locker != nil {
		if err := s.locker.Release(s.ctx, warmupLockKey); err != nil {
			s.logger.Error("failed to release warm-up lock", zap.Error(err))
		}
	}

	s.logger.Info("warm-up pass finished",
		zap.Int("titles", len(results)),
		zap.Int("failed", failed),
	)
}
