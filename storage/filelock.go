package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

const (
	// lockTimeout bounds how long a Load or Save waits for another process
	lockTimeout    = 3 * time.Second
	lockRetryDelay = 100 * time.Millisecond
)

// errLockBusy is returned when the lock is still held at the deadline
var errLockBusy = errors.New("task store is locked by another process")

// FileLock is an exclusive advisory lock. *flock.Flock satisfies it.
type FileLock interface {
	TryLockContext(ctx context.Context, retryDelay time.Duration) (bool, error)
	Unlock() error
}

// FileLockFactory creates the lock guarding a store file
type FileLockFactory interface {
	New(path string) FileLock
}

// FlockFactory creates OS-level locks with github.com/gofrs/flock
type FlockFactory struct{}

// New implements FileLockFactory
func (FlockFactory) New(path string) FileLock {
	return flock.New(path)
}

// acquireLock polls for the lock until lockTimeout and returns a func
// that releases it.
func acquireLock(lock FileLock) (release func(), err error) {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return nil, errLockBusy
	case err != nil:
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	case !locked:
		return nil, errLockBusy
	}
	return func() { _ = lock.Unlock() }, nil
}
