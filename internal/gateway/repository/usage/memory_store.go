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

func (s *MemoryStore) Get(_ context.Context, userID, period string) (int, error) {
	userID, period, err := checkKey(userID, period)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[userID+"|"+period], nil
}

func (s *MemoryStore) Increment(_ context.Context, userID, period string) (int, error) {
	userID, period, err := checkKey(userID, period)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := userID + "|" + period
	s.counts[key]++
	return s.counts[key], nil
}

func (s *MemoryStore) Reserve(_ context.Context, userID, period string, limit int) (int, bool, error) {
	userID, period, err := checkKey(userID, period)
	if err != nil {
		return 0, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := userID + "|" + period
	if s.counts[key] >= limit {
		return s.counts[key], false, nil
	}
	s.counts[key]++
	return s.counts[key], true, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
