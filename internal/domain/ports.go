package domain

import (
	"context"
	"time"
)

// MediaProvider defines the interface for the external metadata provider.
// Implementations: internal/infra/provider/omdb/
type MediaProvider interface {
	// Lookup resolves the best match for name.
	// Returns (nil, nil) when the provider has no such title and
	// *UpstreamError on transport or protocol failures.
	Lookup(ctx context.Context, mediaType MediaType, name string) (*Media, error)
}

// Cache defines the interface for caching operations.
// Implementations: internal/infra/cache/memory.go, internal/infra/redis/cache.go
type Cache interface {
	// Get retrieves a value by key. Returns nil if not found or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
