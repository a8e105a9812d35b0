// Package locker provides distributed locks for coordinating work across
// instances of the service that share one Redis.
package locker

import (
	"context"
	"time"
)

// DistributedLocker is a non-blocking, expiring lock keyed by name.
// Implementations must be safe for concurrent use.
//
//	acquired, err := locker.Acquire(ctx, "lookup-lock:movie_thematrix", 30*time.Second)
//	if err != nil {
//	    return err
//	}
//	if !acquired {
//	    // A peer instance is doing the work.
//	    return nil
//	}
//	defer locker.Release(ctx, "lookup-lock:movie_thematrix")
type DistributedLocker interface {
	// Acquire tries once to take the lock. It returns false, not an error,
	// when another holder has it. The lock expires after ttl if never released.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees a lock taken by this instance. Releasing a lock this
	// instance does not hold is a no-op.
	Release(ctx context.Context, key string) error
}
