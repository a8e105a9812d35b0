// Package cache provides the in-process cache store and the single-flight
// lookup cache that sits in front of the metadata provider.
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryCache implements the domain.Cache interface in process memory.
// Expired entries are dropped lazily on read and by Prune.
type MemoryCache struct {
	mu        sync.RWMutex
	entries   map[string]memoryEntry
	logger    *zap.Logger
	keyPrefix string
	now       func() time.Time
}

// NewMemoryCache creates a new in-process cache instance.
func NewMemoryCache(logger *zap.Logger, keyPrefix string) *MemoryCache {
	return &MemoryCache{
		entries:   make(map[string]memoryEntry),
		logger:    logger,
		keyPrefix: keyPrefix,
		now:       time.Now,
	}
}

// Get retrieves a value by key. Returns nil if the key doesn't exist or has expired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	fullKey := c.buildKey(key)

	c.mu.RLock()
	entry, ok := c.entries[fullKey]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	if entry.expired(c.now()) {
		c.mu.Lock()
		// Re-check under the write lock, a concurrent Set may have refreshed it.
		if current, ok := c.entries[fullKey]; ok && current.expired(c.now()) {
			delete(c.entries, fullKey)
		}
		c.mu.Unlock()

		c.logger.Debug("cache entry expired", zap.String("key", key))

		return nil, nil
	}

	return entry.value, nil
}

// Set stores a value with the given TTL. A non-positive TTL never expires.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[c.buildKey(key)] = entry
	c.mu.Unlock()

	c.logger.Debug("cache set",
		zap.String("key", key),
		zap.Int("bytes", len(value)),
		zap.Duration("ttl", ttl),
	)

	return nil
}

// Ping always succeeds for the in-process store.
func (c *MemoryCache) Ping(_ context.Context) error {
	return nil
}

// Prune drops every expired entry and returns how many were removed.
func (c *MemoryCache) Prune() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
			removed++
		}
	}

	return removed
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// RunJanitor prunes expired entries every interval until ctx is done.
// A non-positive interval disables pruning; expired entries are then only
// dropped when read.
func (c *MemoryCache) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Prune(); n > 0 {
				c.logger.Debug("cache pruned", zap.Int("removed", n))
			}
		}
	}
}

func (c *MemoryCache) buildKey(key string) string {
	return c.keyPrefix + ":" + key
}
