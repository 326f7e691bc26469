package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"codeassist/internal/codeassist"
)

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Record
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]Record),
		now:  time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, rec *Record) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if err := prepare(rec, s.now()); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[rec.ID] = cloneRecord(*rec)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id, userID string) (Record, error) {
	if s == nil {
		return Record{}, fmt.Errorf("store is nil")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[strings.TrimSpace(id)]
	if !ok || rec.UserID != strings.TrimSpace(userID) {
		return Record{}, ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string, limit int) ([]Record, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	s.mu.RLock()
	out := make([]Record, 0, 16)
	for _, rec := range s.data {
		if rec.UserID == userID {
			out = append(out, summary(cloneRecord(rec)))
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if n := normalizeLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func cloneRecord(rec Record) Record {
	rec.Bugs = append([]codeassist.BugFinding{}, rec.Bugs...)
	rec.Suggestions = append([]string{}, rec.Suggestions...)
	rec.SecurityIssues = append([]string{}, rec.SecurityIssues...)
	return rec
}
