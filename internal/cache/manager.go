package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"

	"gamelens/internal/providers"
	"gamelens/internal/structures"
)

// Producer performs the expensive call a cache entry stands for. A nil
// payload is never cached.
type Producer func(ctx context.Context) ([]byte, error)

// Result is what a read hands back. Found is false only for a miss.
type Result struct {
	Payload []byte
	Stale   bool
	Found   bool
}

type Stats struct {
	Refreshes       int64 `json:"refreshes"`
	RefreshFailures int64 `json:"refresh_failures"`
}

type ManagerInterface interface {
	Get(key string) Result
	Set(key string, payload []byte, ttl time.Duration, sourceTag string)
	FetchWithCache(ctx context.Context, key string, producer Producer, ttl time.Duration, sourceTag string) (Result, error)
	Invalidate(key string)
	Clear()
	Wait()
	Stats() Stats
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(logger providers.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

func WithMetrics(metrics providers.MetricsProviderInterface) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// WithSingleFlight collapses overlapping background refreshes of one key
// into a single producer call. Without it every stale read starts its own
// refresh.
func WithSingleFlight() Option {
	return func(m *Manager) { m.flight = &singleflight.Group{} }
}

// Manager is a TTL cache with stale-while-revalidate reads.
type Manager struct {
	store   EntryStore
	now     func() time.Time
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	flight  *singleflight.Group

	background      sync.WaitGroup
	refreshes       atomic.Int64
	refreshFailures atomic.Int64
}

func NewManager(store EntryStore, opts ...Option) *Manager {
	m := &Manager{store: store, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewManagerFromConfig picks the entry backend from conf.Cache.
func NewManagerFromConfig(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) ManagerInterface {
	var store EntryStore
	if conf.Cache.Backend == structures.CacheBackendFreecache && conf.Cache.Size > 0 {
		store = NewFreecacheStore(conf.Cache.Size * 1024 * 1024)
		logger.Infof(providers.TypeCache, "Data cache backend: freecache %dMB", conf.Cache.Size)
	} else {
		store = NewMemoryStore()
		logger.Infof(providers.TypeCache, "Data cache backend: memory")
	}

	opts := []Option{WithLogger(logger), WithMetrics(metrics)}
	if conf.Cache.SingleFlightRefresh {
		opts = append(opts, WithSingleFlight())
	}
	return NewManager(store, opts...)
}

func (m *Manager) Get(key string) Result {
	e, ok := m.store.Load(key)
	if !ok {
		return Result{}
	}
	return Result{Payload: e.Payload, Stale: e.Stale(m.now()), Found: true}
}

func (m *Manager) Set(key string, payload []byte, ttl time.Duration, sourceTag string) {
	err := m.store.Save(Entry{
		Key:       key,
		Payload:   payload,
		FetchedAt: m.now(),
		TTL:       ttl,
		SourceTag: sourceTag,
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrOverflow):
		if m.metrics != nil {
			m.metrics.IncCacheOverflow(providers.CacheLayerData)
		}
		if m.logger != nil {
			m.logger.Debugf(providers.TypeCache, "entry %s (%d bytes) kept outside the bounded cache", key, len(payload))
		}
	default:
		// The previous entry must not outlive a failed write.
		m.store.Delete(key)
		if m.logger != nil {
			m.logger.Warnf(providers.TypeCache, "cache write of %s failed: %v", key, err)
		}
	}
}

// FetchWithCache serves key from the cache when possible. A fresh entry is
// returned as is. A stale entry is returned immediately with Stale set while
// the producer runs in a detached goroutine; a failure there is dropped. On
// a miss the producer runs synchronously and its error reaches the caller.
func (m *Manager) FetchWithCache(ctx context.Context, key string, producer Producer, ttl time.Duration, sourceTag string) (Result, error) {
	cached := m.Get(key)
	if cached.Found && !cached.Stale {
		m.incHits()
		return cached, nil
	}

	if cached.Found {
		m.incStale(sourceTag)
		m.refreshInBackground(context.WithoutCancel(ctx), key, producer, ttl, sourceTag)
		return cached, nil
	}

	m.incMisses()
	payload, err := producer(ctx)
	if payload != nil {
		m.Set(key, payload, ttl, sourceTag)
	}
	return Result{Payload: payload, Found: payload != nil}, err
}

func (m *Manager) refreshInBackground(ctx context.Context, key string, producer Producer, ttl time.Duration, sourceTag string) {
	m.background.Add(1)
	go func() {
		defer m.background.Done()

		var payload []byte
		var err error
		if m.flight != nil {
			var v interface{}
			v, err, _ = m.flight.Do(key, func() (interface{}, error) {
				return producer(ctx)
			})
			payload, _ = v.([]byte)
		} else {
			payload, err = producer(ctx)
		}

		m.refreshes.Inc()
		if err != nil || payload == nil {
			m.refreshFailures.Inc()
			if m.metrics != nil {
				m.metrics.IncRefreshFailures(sourceTag)
			}
			if m.logger != nil && err != nil {
				m.logger.Debugf(providers.TypeCache, "background refresh of %s failed: %v", key, err)
			}
			return
		}
		m.Set(key, payload, ttl, sourceTag)
	}()
}

func (m *Manager) Invalidate(key string) {
	m.store.Delete(key)
}

func (m *Manager) Clear() {
	m.store.Clear()
}

// Wait blocks until every background refresh started so far has finished.
func (m *Manager) Wait() {
	m.background.Wait()
}

func (m *Manager) Stats() Stats {
	return Stats{
		Refreshes:       m.refreshes.Load(),
		RefreshFailures: m.refreshFailures.Load(),
	}
}

func (m *Manager) incHits() {
	if m.metrics != nil {
		m.metrics.IncCacheHits(providers.CacheLayerData)
	}
}

func (m *Manager) incMisses() {
	if m.metrics != nil {
		m.metrics.IncCacheMisses(providers.CacheLayerData)
	}
}

func (m *Manager) incStale(sourceTag string) {
	if m.metrics != nil {
		m.metrics.IncCacheStale(sourceTag)
	}
}
