package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Store counts hits in fixed windows.
type Store interface {
	// Increment adds one hit to key and returns the count in the current
	// window and when that window ends. A key whose window has passed
	// starts over at 1.
	Increment(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryStore keeps counters in process memory. Counters are not shared
// between instances.
type MemoryStore struct {
	mu            sync.Mutex
	windows       map[string]*window
	now           func() time.Time
	sweepInterval time.Duration
	lastSweep     time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows:       make(map[string]*window, 256),
		now:           time.Now,
		sweepInterval: time.Minute,
		lastSweep:     time.Now(),
	}
}

// SetClock replaces the time source.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	s.lastSweep = now()
}

// Increment implements Store.
func (s *MemoryStore) Increment(_ context.Context, key string, d time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= s.sweepInterval {
		s.sweepLocked(now)
	}

	w := s.windows[key]
	if w == nil || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(d)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt, nil
}

// Len returns the number of live counters.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	for key, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, key)
		}
	}
	s.lastSweep = now
}
