package usage

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counts: make(map[string]int)}
}

func (s *MemoryStore) Count(_ context.Context, period string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[period], nil
}

func (s *MemoryStore) IncrementIfBelow(_ context.Context, period string, limit int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.counts[period]
	if c >= limit {
		return c, false, nil
	}
	c++
	s.counts[period] = c
	return c, true, nil
}

func (s *MemoryStore) Prune(_ context.Context, keep string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for p := range s.counts {
		if p != keep {
			delete(s.counts, p)
		}
	}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
