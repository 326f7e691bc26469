package docs

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeOrigin struct {
	mu sync.Mutex

	data map[string][]byte
	urls map[string]string

	getCalls  int
	putCalls  int
	listCalls int
	urlCalls  int

	failPut bool
}

func newFakeOrigin() *fakeOrigin {
	return &fakeOrigin{
		data: map[string][]byte{},
		urls: map[string]string{},
	}
}

func (s *fakeOrigin) Put(_ context.Context, userID, docID string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCalls++
	if s.failPut {
		return fmt.Errorf("put failed")
	}
	s.data[userID+"/"+docID] = append([]byte(nil), content...)
	return nil
}

func (s *fakeOrigin) Get(_ context.Context, userID, docID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	raw, ok := s.data[userID+"/"+docID]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return append([]byte(nil), raw...), nil
}

func (s *fakeOrigin) List(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	prefix := userID + "/"
	out := make([]string, 0, 8)
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, strings.TrimPrefix(k, prefix))
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *fakeOrigin) URL(_ context.Context, userID, docID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urlCalls++
	return s.urls[userID+"/"+docID], nil
}

func TestCachedStoreReadThroughAndMetrics(t *testing.T) {
	origin := newFakeOrigin()
	origin.data["u1/d1"] = []byte("# hello")
	store := NewCachedStore(origin, CacheConfig{
		BodyTTL: time.Minute, BodyMaxEntries: 8,
		ListTTL: time.Minute, ListMaxEntries: 8,
		URLTTL: time.Minute, URLMaxEntries: 8,
	})

	got1, err := store.Get(context.Background(), "u1", "d1")
	if err != nil {
		t.Fatalf("first get failed: %v", err)
	}
	got2, err := store.Get(context.Background(), "u1", "d1")
	if err != nil {
		t.Fatalf("second get failed: %v", err)
	}
	if string(got1) != "# hello" || string(got2) != "# hello" {
		t.Fatalf("unexpected content: %q %q", got1, got2)
	}
	if origin.getCalls != 1 {
		t.Fatalf("expected one origin get call, got %d", origin.getCalls)
	}
	m := store.Metrics()
	if m.BodyHits != 1 || m.BodyMisses != 1 || m.OriginReads != 1 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
}

func TestCachedStoreWriteThrough(t *testing.T) {
	origin := newFakeOrigin()
	store := NewCachedStore(origin, DefaultCacheConfig())

	if _, err := store.List(context.Background(), "u1"); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if err := store.Put(context.Background(), "u1", "d1", []byte("new")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	got, err := store.Get(context.Background(), "u1", "d1")
	if err != nil {
		t.Fatalf("get after put failed: %v", err)
	}
	if string(got) != "new" || origin.getCalls != 0 {
		t.Fatalf("expected cached body, got %q with %d origin reads", got, origin.getCalls)
	}
	ids, err := store.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list after put failed: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"d1"}) {
		t.Fatalf("put did not invalidate list cache: %#v", ids)
	}

	origin.failPut = true
	if err := store.Put(context.Background(), "u1", "d2", []byte("bad")); err == nil {
		t.Fatalf("expected put error")
	}
	if _, err := store.Get(context.Background(), "u1", "d2"); err == nil {
		t.Fatalf("expected miss for failed write")
	}
	if m := store.Metrics(); m.OriginWriteErr != 1 {
		t.Fatalf("expected one write error, got %+v", m)
	}
}

func TestCachedStoreTTLAndLRU(t *testing.T) {
	origin := newFakeOrigin()
	origin.data["u1/a"] = []byte("A")
	origin.data["u1/b"] = []byte("B")

	store := NewCachedStore(origin, CacheConfig{BodyTTL: time.Minute, BodyMaxEntries: 1})
	for _, id := range []string{"a", "b", "a"} {
		if _, err := store.Get(context.Background(), "u1", id); err != nil {
			t.Fatalf("get %s failed: %v", id, err)
		}
	}
	if origin.getCalls != 3 {
		t.Fatalf("expected 3 origin get calls with LRU eviction, got %d", origin.getCalls)
	}

	origin.getCalls = 0
	short := NewCachedStore(origin, CacheConfig{BodyTTL: 10 * time.Millisecond, BodyMaxEntries: 8})
	if _, err := short.Get(context.Background(), "u1", "a"); err != nil {
		t.Fatalf("ttl get first failed: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := short.Get(context.Background(), "u1", "a"); err != nil {
		t.Fatalf("ttl get second failed: %v", err)
	}
	if origin.getCalls != 2 {
		t.Fatalf("expected 2 origin reads after ttl expiry, got %d", origin.getCalls)
	}
}

func TestCachedStoreURL(t *testing.T) {
	origin := newFakeOrigin()
	origin.urls["u1/d1"] = "https://example/d1"
	store := NewCachedStore(origin, DefaultCacheConfig())

	for i := 0; i < 2; i++ {
		u, err := store.URL(context.Background(), "u1", "d1")
		if err != nil {
			t.Fatalf("url failed: %v", err)
		}
		if u != "https://example/d1" {
			t.Fatalf("unexpected url %q", u)
		}
	}
	if origin.urlCalls != 1 {
		t.Fatalf("expected one origin url call, got %d", origin.urlCalls)
	}

	// Empty URLs are never cached.
	for i := 0; i < 2; i++ {
		if _, err := store.URL(context.Background(), "u1", "d2"); err != nil {
			t.Fatalf("url failed: %v", err)
		}
	}
	if origin.urlCalls != 3 {
		t.Fatalf("expected empty url to miss each time, got %d calls", origin.urlCalls)
	}
}
