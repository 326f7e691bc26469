package docs

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	docsrepo "codeassist/internal/gateway/repository/docs"
)

type Store = docsrepo.Store

type CacheConfig struct {
	BodyTTL        time.Duration
	BodyMaxEntries int

	ListTTL        time.Duration
	ListMaxEntries int

	// URLTTL must stay below the origin's presign lifetime.
	URLTTL        time.Duration
	URLMaxEntries int
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		BodyTTL:        5 * time.Minute,
		BodyMaxEntries: 512,
		ListTTL:        30 * time.Second,
		ListMaxEntries: 256,
		URLTTL:         5 * time.Minute,
		URLMaxEntries:  512,
	}
}

type MetricsSnapshot struct {
	BodyHits       uint64
	BodyMisses     uint64
	ListHits       uint64
	ListMisses     uint64
	URLHits        uint64
	URLMisses      uint64
	OriginReads    uint64
	OriginWrites   uint64
	OriginReadErr  uint64
	OriginWriteErr uint64
}

type counters struct {
	bodyHits       atomic.Uint64
	bodyMisses     atomic.Uint64
	listHits       atomic.Uint64
	listMisses     atomic.Uint64
	urlHits        atomic.Uint64
	urlMisses      atomic.Uint64
	originReads    atomic.Uint64
	originWrites   atomic.Uint64
	originReadErr  atomic.Uint64
	originWriteErr atomic.Uint64
}

// CachedStore reads through and writes through to origin.
type CachedStore struct {
	origin Store

	bodies *expirable.LRU[string, []byte]
	lists  *expirable.LRU[string, []string]
	urls   *expirable.LRU[string, string]
	stats  counters
}

func NewCachedStore(origin Store, cfg CacheConfig) *CachedStore {
	def := DefaultCacheConfig()
	if cfg.BodyTTL <= 0 {
		cfg.BodyTTL = def.BodyTTL
	}
	if cfg.BodyMaxEntries <= 0 {
		cfg.BodyMaxEntries = def.BodyMaxEntries
	}
	if cfg.ListTTL <= 0 {
		cfg.ListTTL = def.ListTTL
	}
	if cfg.ListMaxEntries <= 0 {
		cfg.ListMaxEntries = def.ListMaxEntries
	}
	if cfg.URLTTL <= 0 {
		cfg.URLTTL = def.URLTTL
	}
	if cfg.URLMaxEntries <= 0 {
		cfg.URLMaxEntries = def.URLMaxEntries
	}
	return &CachedStore{
		origin: origin,
		bodies: expirable.NewLRU[string, []byte](cfg.BodyMaxEntries, nil, cfg.BodyTTL),
		lists:  expirable.NewLRU[string, []string](cfg.ListMaxEntries, nil, cfg.ListTTL),
		urls:   expirable.NewLRU[string, string](cfg.URLMaxEntries, nil, cfg.URLTTL),
	}
}

func (s *CachedStore) Put(ctx context.Context, userID, docID string, content []byte) error {
	s.stats.originWrites.Add(1)
	if err := s.origin.Put(ctx, userID, docID, content); err != nil {
		s.stats.originWriteErr.Add(1)
		return err
	}
	key := cacheKey(userID, docID)
	s.bodies.Add(key, append([]byte(nil), content...))
	s.lists.Remove(strings.TrimSpace(userID))
	s.urls.Remove(key)
	return nil
}

func (s *CachedStore) Get(ctx context.Context, userID, docID string) ([]byte, error) {
	key := cacheKey(userID, docID)
	if raw, ok := s.bodies.Get(key); ok {
		s.stats.bodyHits.Add(1)
		return append([]byte(nil), raw...), nil
	}
	s.stats.bodyMisses.Add(1)
	s.stats.originReads.Add(1)

	raw, err := s.origin.Get(ctx, userID, docID)
	if err != nil {
		s.stats.originReadErr.Add(1)
		return nil, err
	}
	s.bodies.Add(key, append([]byte(nil), raw...))
	return raw, nil
}

func (s *CachedStore) List(ctx context.Context, userID string) ([]string, error) {
	userID = strings.TrimSpace(userID)
	if ids, ok := s.lists.Get(userID); ok {
		s.stats.listHits.Add(1)
		return append([]string(nil), ids...), nil
	}
	s.stats.listMisses.Add(1)
	s.stats.originReads.Add(1)

	ids, err := s.origin.List(ctx, userID)
	if err != nil {
		s.stats.originReadErr.Add(1)
		return nil, err
	}
	s.lists.Add(userID, append([]string(nil), ids...))
	return ids, nil
}

func (s *CachedStore) URL(ctx context.Context, userID, docID string) (string, error) {
	key := cacheKey(userID, docID)
	if cached, ok := s.urls.Get(key); ok {
		s.stats.urlHits.Add(1)
		return cached, nil
	}
	s.stats.urlMisses.Add(1)
	s.stats.originReads.Add(1)

	url, err := s.origin.URL(ctx, userID, docID)
	if err != nil {
		s.stats.originReadErr.Add(1)
		return "", err
	}
	if strings.TrimSpace(url) != "" {
		s.urls.Add(key, url)
	}
	return url, nil
}

func (s *CachedStore) Metrics() MetricsSnapshot {
	if s == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		BodyHits:       s.stats.bodyHits.Load(),
		BodyMisses:     s.stats.bodyMisses.Load(),
		ListHits:       s.stats.listHits.Load(),
		ListMisses:     s.stats.listMisses.Load(),
		URLHits:        s.stats.urlHits.Load(),
		URLMisses:      s.stats.urlMisses.Load(),
		OriginReads:    s.stats.originReads.Load(),
		OriginWrites:   s.stats.originWrites.Load(),
		OriginReadErr:  s.stats.originReadErr.Load(),
		OriginWriteErr: s.stats.originWriteErr.Load(),
	}
}

func cacheKey(userID, docID string) string {
	return docsrepo.ObjectKey(userID, strings.TrimSuffix(strings.TrimSpace(docID), ".md"))
}
