package cache

import (
	"context"
	"sync"
	"time"
)

// lockEntry represents a held lock with its expiration
type lockEntry struct {
	expiresAt time.Time
}

// InMemoryRunLock implements shared.RunLock with an in-process map. It is
// suitable for single-instance deployments and testing.
type InMemoryRunLock struct {
	mu        sync.Mutex
	locks     map[string]lockEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryRunLock creates a new in-memory run lock.
// It starts a background goroutine to clean up expired locks.
func NewInMemoryRunLock() *InMemoryRunLock {
	l := &InMemoryRunLock{
		locks:    make(map[string]lockEntry),
		stopChan: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// Acquire attempts to take the lock. Returns false without error if another
// holder owns it and the hold has not expired.
func (l *InMemoryRunLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if e, held := l.locks[key]; held && time.Now().Before(e.expiresAt) {
		return false, nil
	}

	l.locks[key] = lockEntry{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

// Release frees the lock
func (l *InMemoryRunLock) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.locks, key)
	return nil
}

// Close stops the cleanup goroutine
func (l *InMemoryRunLock) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
	})
	l.wg.Wait()
	return nil
}

// cleanupLoop periodically drops expired locks so the map does not grow
// unbounded over long uptimes
func (l *InMemoryRunLock) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.removeExpired()
		case <-l.stopChan:
			return
		}
	}
}

func (l *InMemoryRunLock) removeExpired() {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, e := range l.locks {
		if now.After(e.expiresAt) {
			delete(l.locks, key)
		}
	}
}
