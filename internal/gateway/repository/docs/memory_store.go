package docs

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
	}
}

func (s *MemoryStore) Put(_ context.Context, userID, docID string, content []byte) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	userID, docID, err := checkIDs(userID, docID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[ObjectKey(userID, docID)] = append([]byte(nil), content...)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, userID, docID string) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	userID, docID, err := checkIDs(userID, docID)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[ObjectKey(userID, docID)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (s *MemoryStore) List(_ context.Context, userID string) ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	prefix := userPrefix(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, 16)
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			out = append(out, docIDFromKey(prefix, key))
		}
	}
	sort.Strings(out)
	return out, nil
}

// URL is always empty; memory documents are only served inline.
func (s *MemoryStore) URL(context.Context, string, string) (string, error) {
	return "", nil
}
