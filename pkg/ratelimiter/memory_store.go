package ratelimiter

import (
	"context"
	"sync"
	"time"
)

type windowCounter struct {
	count   int
	resetAt time.Time
}

// MemoryStore is a mutex-guarded in-process store for single-node
// deployments and tests.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: map[string]*windowCounter{}}
}

func (s *MemoryStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	c, ok := s.counters[key]
	if !ok || !c.resetAt.After(now) {
		c = &windowCounter{resetAt: now.Add(window)}
		s.counters[key] = c
	}
	c.count++
	return c.count, c.resetAt, nil
}

func (s *MemoryStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counters, key)
	return nil
}
