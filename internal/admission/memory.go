package admission

import (
	"context"
	"sync"
	"time"
)

// bucket is the mutable window state for one (identity, category) key.
type bucket struct {
	mu          sync.Mutex
	count       int
	windowStart time.Time
	window      time.Duration
}

// MemoryStore keeps window counters in process memory. Contention is
// per bucket: concurrent requests only serialize when they share an
// identity and category.
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]*bucket

	stopJanitor chan struct{}
	janitorOnce sync.Once

	// now is swappable for tests.
	now func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// janitorInterval is how often stale buckets are swept.
const janitorInterval = 5 * time.Minute

// NewMemoryStore creates a store with a background janitor sweeping
// buckets idle for more than two windows.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		buckets:     make(map[string]*bucket),
		stopJanitor: make(chan struct{}),
		now:         time.Now,
	}
	go s.janitor()
	return s
}

// Take increments the window counter for key and returns the
// post-increment count plus remaining window time.
func (s *MemoryStore) Take(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	b := s.getOrCreate(key, window)

	b.mu.Lock()
	defer b.mu.Unlock()

	now := s.now()
	if now.Sub(b.windowStart) >= window {
		b.count = 0
		b.windowStart = now
	}
	b.count++
	b.window = window

	remaining := window - now.Sub(b.windowStart)
	return b.count, remaining, nil
}

func (s *MemoryStore) getOrCreate(key string, window time.Duration) *bucket {
	s.mu.RLock()
	b, ok := s.buckets[key]
	s.mu.RUnlock()
	if ok {
		return b
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.buckets[key]; ok {
		return b
	}
	b = &bucket{windowStart: s.now(), window: window}
	s.buckets[key] = b
	return b
}

// janitor periodically drops buckets whose window expired long ago, so
// churn of distinct identities does not grow memory without bound.
func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopJanitor:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, b := range s.buckets {
		b.mu.Lock()
		stale := now.Sub(b.windowStart) >= 2*b.window
		b.mu.Unlock()
		if stale {
			delete(s.buckets, key)
		}
	}
}

// Close stops the janitor.
func (s *MemoryStore) Close() error {
	s.janitorOnce.Do(func() { close(s.stopJanitor) })
	return nil
}

// Len reports the number of live buckets, for tests and diagnostics.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buckets)
}
