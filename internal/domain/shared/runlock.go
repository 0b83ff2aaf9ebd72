package shared

import (
	"context"
	"time"
)

// RunLock serializes billing runs that target the same (organization, month) pair.
// The storage-level uniqueness constraints remain the authoritative guard; the lock
// exists so that concurrent invocations fail fast instead of racing to the database.
type RunLock interface {
	// Acquire attempts to take the lock for key with a TTL.
	// Returns true if the lock was newly acquired, false if it is already held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release releases the lock for key. Releasing an unheld lock is a no-op.
	Release(ctx context.Context, key string) error

	// Close closes the lock store and releases resources
	Close() error
}
