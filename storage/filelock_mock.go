package storage

import (
	"context"
	"sync"
	"time"
)

// MockFileLock is an in-process FileLock that records how it was used.
// A held lock refuses a second TryLockContext until Unlock.
type MockFileLock struct {
	mu   sync.Mutex
	held bool
	err  error

	LockAttempts   int
	UnlockAttempts int
}

// TryLockContext implements FileLock
func (m *MockFileLock) TryLockContext(_ context.Context, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LockAttempts++
	switch {
	case m.err != nil:
		return false, m.err
	case m.held:
		return false, nil
	}
	m.held = true
	return true, nil
}

// Unlock implements FileLock
func (m *MockFileLock) Unlock() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UnlockAttempts++
	m.held = false
	return nil
}

// IsLocked reports whether the lock is currently held
func (m *MockFileLock) IsLocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held
}

// MockFileLockFactory hands out one MockFileLock per path
type MockFileLockFactory struct {
	mu    sync.Mutex
	locks map[string]*MockFileLock

	// DefaultLockError is returned by every lock created after it is set
	DefaultLockError error
}

// NewMockFileLockFactory creates an empty factory
func NewMockFileLockFactory() *MockFileLockFactory {
	return &MockFileLockFactory{locks: make(map[string]*MockFileLock)}
}

// New implements FileLockFactory
func (f *MockFileLockFactory) New(path string) FileLock {
	f.mu.Lock()
	defer f.mu.Unlock()

	lock, ok := f.locks[path]
	if !ok {
		lock = &MockFileLock{err: f.DefaultLockError}
		f.locks[path] = lock
	}
	return lock
}

// GetLock returns the lock created for path, or nil
func (f *MockFileLockFactory) GetLock(path string) *MockFileLock {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.locks[path]
}
