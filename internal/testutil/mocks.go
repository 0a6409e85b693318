package testutil

import (
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/atomic"

	"gamelens/internal/providers"
	"gamelens/internal/structures"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface with counters
// that are safe to read from tests while background work runs.
type MockMetrics struct {
	Requests        atomic.Int64
	Hits            atomic.Int64
	Misses          atomic.Int64
	Stale           atomic.Int64
	RefreshFailures atomic.Int64
	Overflows       atomic.Int64
	ProviderErrors  atomic.Int64
	Persists        atomic.Int64
	ActiveSessions  atomic.Int64

	mu       sync.Mutex
	breakers map[string]int
	records  map[string]int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 { m.Requests.Inc() }
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits(_ string)                            { m.Hits.Inc() }
func (m *MockMetrics) IncCacheMisses(_ string)                          { m.Misses.Inc() }
func (m *MockMetrics) IncCacheStale(_ string)                           { m.Stale.Inc() }
func (m *MockMetrics) IncRefreshFailures(_ string)                      { m.RefreshFailures.Inc() }
func (m *MockMetrics) IncCacheOverflow(_ string)                        { m.Overflows.Inc() }
func (m *MockMetrics) IncProviderErrors(_, _ string)                    { m.ProviderErrors.Inc() }
func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration)       { m.Persists.Inc() }
func (m *MockMetrics) SetActiveSessions(count int)                      { m.ActiveSessions.Store(int64(count)) }

func (m *MockMetrics) SetBreakerState(source string, state int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.breakers == nil {
		m.breakers = make(map[string]int)
	}
	m.breakers[source] = state
}

func (m *MockMetrics) BreakerState(source string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.breakers[source]
}

func (m *MockMetrics) SetRecordsTotal(kind string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records == nil {
		m.records = make(map[string]int)
	}
	m.records[kind] = count
}

func (m *MockMetrics) RecordsTotal(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[kind]
}

// RecordsTotalSet also reports whether the gauge was ever written.
func (m *MockMetrics) RecordsTotalSet(kind string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.records[kind]
	return v, ok
}

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Config returns a valid configuration with caching enabled in memory.
func Config() *structures.Config {
	return &structures.Config{
		AppName: "GameLens",
		WebServer: structures.Server{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Persistence: structures.Persistence{SaveInterval: 30 * time.Second},
		Store:       structures.StoreConfig{Driver: structures.StoreDriverFile},
		Logger: structures.LoggerConfig{
			Level: "debug",
			Mode:  0644,
			Dir:   "/tmp",
		},
		Cache: structures.CacheConfig{
			Enabled:     true,
			Backend:     structures.CacheBackendMemory,
			Size:        1,
			DefaultTTL:  time.Hour,
			ResponseTTL: 30 * time.Second,
		},
		Backlog: structures.BacklogConfig{
			InvestmentWeight: 5,
			PriceWeight:      3,
			PriceCap:         60,
		},
		Activity: structures.ActivityConfig{ScanInterval: 15 * time.Second},
		Providers: structures.ProvidersConfig{
			RateLimit:      100,
			Burst:          10,
			MaxFailures:    5,
			BreakerTimeout: time.Minute,
			Concurrency:    4,
			OwnershipTTL:   time.Hour,
			PricingTTL:     time.Hour,
			EstimateTTL:    time.Hour,
		},
	}
}

var ErrMockStore = errors.New("mock store failure")

// MockStore is an in-memory storage.Store. Values go through JSON so tests
// observe the same decoding a real backend performs.
type MockStore struct {
	mu         sync.Mutex
	Data       map[string][]byte
	SetErr     error
	PersistErr error
	Persists   int
	Closed     bool
}

func NewMockStore() *MockStore {
	return &MockStore{Data: make(map[string][]byte)}
}

func (m *MockStore) Get(key string, dst any) (bool, error) {
	m.mu.Lock()
	raw, ok := m.Data[key]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m *MockStore) Set(key string, value any) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.Data[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *MockStore) Delete(key string) error {
	m.mu.Lock()
	delete(m.Data, key)
	m.mu.Unlock()
	return nil
}

func (m *MockStore) Persist() error {
	m.mu.Lock()
	m.Persists++
	m.mu.Unlock()
	return m.PersistErr
}

func (m *MockStore) Close() error {
	m.Closed = true
	return nil
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu      sync.Mutex
	Data    map[string][]byte
	Cleared int
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data = make(map[string][]byte)
	m.Cleared++
}

// MockCompressor implements storage.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}
