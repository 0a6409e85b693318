package cache

import (
	"errors"
	"sync"
	"time"

	"github.com/coocood/freecache"
	"github.com/goccy/go-json"
)

// Entry is one cached producer result. Staleness is derived from FetchedAt
// and TTL at read time and never stored.
type Entry struct {
	Key       string        `json:"key"`
	Payload   []byte        `json:"payload"`
	FetchedAt time.Time     `json:"fetched_at"`
	TTL       time.Duration `json:"ttl"`
	SourceTag string        `json:"source_tag"`
}

func (e Entry) Stale(now time.Time) bool {
	return now.Sub(e.FetchedAt) > e.TTL
}

// ErrOverflow reports that an entry was kept, but outside the bounded
// segment of the store.
var ErrOverflow = errors.New("cache entry stored outside the bounded segment")

// EntryStore holds cache entries. Save replaces an entry atomically; after
// a nil or ErrOverflow return, Load observes the new entry.
type EntryStore interface {
	Load(key string) (Entry, bool)
	Save(e Entry) error
	Delete(key string)
	Clear()
}

type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Load(key string) (Entry, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	return e, ok
}

func (s *MemoryStore) Save(e Entry) error {
	s.mu.Lock()
	s.entries[e.Key] = e
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]Entry)
	s.mu.Unlock()
}

// FreecacheStore keeps encoded entries in a fixed-size freecache segment.
// Entries are written without expiry: a stale entry must still be served.
// Under memory pressure freecache evicts the oldest entries, which the
// manager sees as a plain miss. Entries freecache refuses for their size go
// to an unbounded overflow map instead; a key lives in exactly one of the two.
type FreecacheStore struct {
	mu       sync.Mutex
	cache    *freecache.Cache
	overflow *MemoryStore
}

func NewFreecacheStore(sizeBytes int) *FreecacheStore {
	return &FreecacheStore{
		cache:    freecache.NewCache(sizeBytes),
		overflow: NewMemoryStore(),
	}
}

func (s *FreecacheStore) Load(key string) (Entry, bool) {
	if e, ok := s.overflow.Load(key); ok {
		return e, true
	}
	raw, err := s.cache.Get([]byte(key))
	if err != nil {
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, false
	}
	return e, true
}

func (s *FreecacheStore) Save(e Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.cache.Set([]byte(e.Key), raw, 0)
	switch {
	case err == nil:
		s.overflow.Delete(e.Key)
		return nil
	case errors.Is(err, freecache.ErrLargeEntry), errors.Is(err, freecache.ErrLargeKey):
		s.cache.Del([]byte(e.Key))
		_ = s.overflow.Save(e)
		return ErrOverflow
	default:
		return err
	}
}

// Overflowed returns how many keys currently live in the overflow map.
func (s *FreecacheStore) Overflowed() int {
	s.overflow.mu.RLock()
	defer s.overflow.mu.RUnlock()
	return len(s.overflow.entries)
}

func (s *FreecacheStore) Delete(key string) {
	s.mu.Lock()
	s.cache.Del([]byte(key))
	s.overflow.Delete(key)
	s.mu.Unlock()
}

func (s *FreecacheStore) Clear() {
	s.mu.Lock()
	s.cache.Clear()
	s.overflow.Clear()
	s.mu.Unlock()
}
