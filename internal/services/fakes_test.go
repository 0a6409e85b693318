package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gamelens/internal/cache"
	"gamelens/internal/models"
	"gamelens/internal/sources"
	"gamelens/internal/testutil"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeOwnership struct {
	mu        sync.Mutex
	owned     []models.GameRecord
	details   map[string]models.GameRecord
	ownedErr  error
	ownedHits int
	detailHit int
}

func (f *fakeOwnership) OwnedGames(_ context.Context, _ sources.Account) ([]models.GameRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ownedHits++
	if f.ownedErr != nil {
		return nil, f.ownedErr
	}
	return append([]models.GameRecord(nil), f.owned...), nil
}

func (f *fakeOwnership) AppDetails(_ context.Context, id string) (*models.GameRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailHit++
	r, ok := f.details[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

type fakePricing struct {
	mu      sync.Mutex
	prices  map[string]models.GameRecord
	history map[string][]models.SaleEvent
	failFor map[string]error
	hits    int
}

func (f *fakePricing) CurrentPrice(_ context.Context, id string) (*models.GameRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits++
	if err := f.failFor[id]; err != nil {
		return nil, err
	}
	r, ok := f.prices[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakePricing) PriceHistory(_ context.Context, id string) ([]models.SaleEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits++
	return f.history[id], nil
}

type fakeEstimate struct {
	minutes map[string]int
}

func (f *fakeEstimate) MainStoryMinutes(_ context.Context, title string) (*int, error) {
	m, ok := f.minutes[title]
	if !ok {
		return nil, nil
	}
	return models.Int(m), nil
}

type fakeWishlist struct {
	items []models.WatchlistEntry
	err   error
}

func (f *fakeWishlist) Wishlist(_ context.Context, _ string) ([]models.WatchlistEntry, error) {
	return f.items, f.err
}

type fakeMonitor struct {
	completed []models.PlaySession
}

func (f *fakeMonitor) RegisterMapping(models.ProcessMapping) error { return nil }
func (f *fakeMonitor) Mappings() []models.ProcessMapping           { return nil }
func (f *fakeMonitor) Scan(context.Context) error                  { return nil }
func (f *fakeMonitor) ActiveSessions() []models.PlaySession        { return nil }
func (f *fakeMonitor) CompletedSessions() []models.PlaySession     { return f.completed }
func (f *fakeMonitor) CloseAll() error                             { return nil }

type harness struct {
	svc       *LibraryService
	store     *testutil.MockStore
	cache     *cache.Manager
	clock     *testutil.Clock
	ownership *fakeOwnership
	pricing   *fakePricing
	estimate  *fakeEstimate
	wishlist  *fakeWishlist
	monitor   *fakeMonitor
	metrics   *testutil.MockMetrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store: testutil.NewMockStore(),
		clock: testutil.NewClock(now),
		ownership: &fakeOwnership{
			owned: []models.GameRecord{
				{ID: "620", Title: "Portal 2", PlaytimeMinutes: models.Int(480)},
				{ID: "70", Title: "Half-Life", PlaytimeMinutes: models.Int(0)},
			},
			details: map[string]models.GameRecord{
				"620": {ID: "620", Tags: []string{"Puzzle", "Co-op"}, ReviewScore: models.Int(98), ReviewCount: models.Int(300000)},
				"70":  {ID: "70", Tags: []string{"FPS", "Classic"}},
			},
		},
		pricing: &fakePricing{
			prices: map[string]models.GameRecord{
				"620": {ID: "620", BasePrice: models.Float(9.99), CurrentPrice: models.Float(1.99), HistoricalLow: models.Float(0.99), SourceFlags: []string{models.SourcePricing}},
				"70":  {ID: "70", BasePrice: models.Float(9.99), CurrentPrice: models.Float(9.99), SourceFlags: []string{models.SourcePricing}},
			},
			history: map[string][]models.SaleEvent{},
			failFor: map[string]error{},
		},
		estimate: &fakeEstimate{minutes: map[string]int{"Portal 2": 540}},
		wishlist: &fakeWishlist{},
		monitor:  &fakeMonitor{},
		metrics:  &testutil.MockMetrics{},
	}
	h.cache = cache.NewManager(cache.NewMemoryStore(), cache.WithClock(h.clock.Now))

	set := sources.Set{Ownership: h.ownership, Pricing: h.pricing, Estimate: h.estimate, Wishlist: h.wishlist}
	h.svc = NewLibraryService(testutil.Config(), h.store, h.cache, set, h.monitor, &testutil.MockLogger{}, h.metrics)
	h.svc.SetClock(h.clock.Now)
	return h
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	require.NoError(t, h.svc.SetSetting(SettingSteamID, "7656"))
	require.NoError(t, h.svc.SetSetting(SettingSteamKey, "secret"))
}
