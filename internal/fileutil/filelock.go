package fileutil

import (
	"context"
	"time"

	"github.com/gofrs/flock"
)

// FileLock defines the interface for file locking operations
type FileLock interface {
	// TryLockContext attempts to acquire an exclusive lock with retries
	TryLockContext(ctx context.Context, retryInterval time.Duration) (bool, error)

	// Unlock releases the lock
	Unlock() error
}

// LockFactory creates FileLock instances
type LockFactory interface {
	// New creates a new FileLock for the given path
	New(path string) FileLock
}

// FlockFactory is the default factory implementation using flock
type FlockFactory struct{}

// New implements LockFactory.New
func (FlockFactory) New(path string) FileLock {
	return flock.New(path)
}
