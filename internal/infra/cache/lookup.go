package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"media-search-service/internal/domain"
	"media-search-service/internal/metrics"
	"media-search-service/pkg/locker"
)

const (
	defaultTTL          = time.Hour
	defaultLockTTL      = 30 * time.Second
	defaultPollInterval = 100 * time.Millisecond

	lockKeyPrefix = "lookup-lock:"
)

// Loader resolves a key on a cache miss. A nil value with a nil error is a
// confirmed absence and is memoized like a found value. Errors are never memoized.
type Loader[T any] func(ctx context.Context) (*T, error)

// LookupConfig holds lookup cache settings.
type LookupConfig struct {
	// TTL is how long a resolution stays valid. Non-positive values fall back to one hour.
	TTL time.Duration

	// Locker coordinates resolutions across instances sharing the store. Optional.
	Locker       locker.DistributedLocker
	LockTTL      time.Duration
	PollInterval time.Duration
}

// entry is the stored form of a resolution.
type entry[T any] struct {
	Found bool `json:"found"`
	Value *T   `json:"value,omitempty"`
}

// Lookup is a key/value cache that coalesces concurrent resolutions of the
// same key into a single loader call and memoizes the outcome for TTL.
type Lookup[T any] struct {
	store        domain.Cache
	group        singleflight.Group
	ttl          time.Duration
	locker       locker.DistributedLocker
	lockTTL      time.Duration
	pollInterval time.Duration
	logger       *zap.Logger
}

// NewLookup creates a Lookup over store. A nil store disables memoization
// while keeping single-flight coalescing.
func NewLookup[T any](store domain.Cache, cfg LookupConfig, logger *zap.Logger) *Lookup[T] {
	l := &Lookup[T]{
		store:        store,
		ttl:          cfg.TTL,
		locker:       cfg.Locker,
		lockTTL:      cfg.LockTTL,
		pollInterval: cfg.PollInterval,
		logger:       logger,
	}
	if l.ttl <= 0 {
		l.ttl = defaultTTL
	}
	if l.lockTTL <= 0 {
		l.lockTTL = defaultLockTTL
	}
	if l.pollInterval <= 0 {
		l.pollInterval = defaultPollInterval
	}

	return l
}

// TTL returns the effective entry time-to-live.
func (l *Lookup[T]) TTL() time.Duration {
	return l.ttl
}

// GetOrResolve returns the memoized resolution for key or runs load.
// Concurrent callers for the same key share one in-flight load; a caller
// whose ctx ends stops waiting without cancelling the shared load.
func (l *Lookup[T]) GetOrResolve(ctx context.Context, key string, load Loader[T]) (*T, error) {
	if v, ok := l.cached(ctx, key); ok {
		metrics.CacheHitsTotal.Inc()
		return v, nil
	}
	metrics.CacheMissesTotal.Inc()

	ch := l.group.DoChan(key, func() (interface{}, error) {
		return l.resolve(context.WithoutCancel(ctx), key, load)
	})

	select {
	case res := <-ch:
		if res.Shared {
			metrics.CacheCoalescedTotal.Inc()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		v, _ := res.Val.(*T)

		return v, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Lookup[T]) resolve(ctx context.Context, key string, load Loader[T]) (*T, error) {
	// Another flight may have completed between our miss and this one starting.
	if v, ok := l.cached(ctx, key); ok {
		return v, nil
	}

	if l.locker != nil && l.store != nil {
		v, found, release := l.awaitPeer(ctx, key)
		if found {
			return v, nil
		}
		if release != nil {
			defer release()
		}
	}

	v, err := safeLoad(ctx, load)
	if err != nil {
		return nil, err
	}

	l.save(ctx, key, v)

	return v, nil
}

// awaitPeer takes the cross-instance lock for key. When another instance
// holds it, awaitPeer polls the store until that instance's result appears,
// the lock frees up, or lockTTL passes.
func (l *Lookup[T]) awaitPeer(ctx context.Context, key string) (*T, bool, func()) {
	lockKey := lockKeyPrefix + key
	deadline := time.Now().Add(l.lockTTL)

	for {
		acquired, err := l.locker.Acquire(ctx, lockKey, l.lockTTL)
		if err != nil {
			l.logger.Warn("lookup lock unavailable, resolving locally",
				zap.String("key", key),
				zap.Error(err),
			)
			return nil, false, nil
		}
		if acquired {
			return nil, false, func() {
				if err := l.locker.Release(ctx, lockKey); err != nil {
					l.logger.Warn("failed to release lookup lock", zap.String("key", key), zap.Error(err))
				}
			}
		}

		if !time.Now().Before(deadline) {
			l.logger.Warn("peer resolution timed out, resolving locally", zap.String("key", key))
			return nil, false, nil
		}

		select {
		case <-ctx.Done():
			return nil, false, nil
		case <-time.After(l.pollInterval):
		}

		if v, ok := l.cached(ctx, key); ok {
			l.logger.Debug("resolved by peer instance", zap.String("key", key))
			return v, true, nil
		}
	}
}

// safeLoad runs load, turning a panic into an error. The load runs on a
// singleflight goroutine where an escaped panic would kill the process.
func safeLoad[T any](ctx context.Context, load Loader[T]) (v *T, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("lookup loader panicked: %v", r)
		}
	}()

	return load(ctx)
}

func (l *Lookup[T]) cached(ctx context.Context, key string) (*T, bool) {
	if l.store == nil {
		return nil, false
	}

	data, err := l.store.Get(ctx, key)
	if err != nil {
		l.logger.Warn("cache read failed, treating as miss", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if data == nil {
		return nil, false
	}

	var e entry[T]
	if err := json.Unmarshal(data, &e); err != nil {
		l.logger.Warn("cache entry unreadable, treating as miss", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !e.Found {
		return nil, true
	}

	return e.Value, true
}

func (l *Lookup[T]) save(ctx context.Context, key string, v *T) {
	if l.store == nil {
		return
	}

	data, err := json.Marshal(entry[T]{Found: v != nil, Value: v})
	if err != nil {
		l.logger.Warn("cache entry not encodable", zap.String("key", key), zap.Error(err))
		return
	}

	if err := l.store.Set(ctx, key, data, l.ttl); err != nil {
		l.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
