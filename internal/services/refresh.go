package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"gamelens/internal/aggregator"
	"gamelens/internal/cache"
	"gamelens/internal/models"
	"gamelens/internal/providers"
	"gamelens/internal/recommend"
	"gamelens/internal/sources"
	"gamelens/internal/storage"
)

// fetchLog collects provider errors and per-source call outcomes from
// concurrent lookups.
type fetchLog struct {
	mu       sync.Mutex
	errors   []*models.ProviderError
	calls    map[string]int
	failures map[string]int
	failedID map[string]struct{}
}

func newFetchLog() *fetchLog {
	return &fetchLog{
		errors:   []*models.ProviderError{},
		calls:    make(map[string]int),
		failures: make(map[string]int),
		failedID: make(map[string]struct{}),
	}
}

func (l *fetchLog) record(source, gameID string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[source]++
	if err == nil {
		return
	}
	perr := sources.AsProviderError(source, err)
	if perr.Context == "" && gameID != "" {
		perr.Context = "game " + gameID
	}
	l.errors = append(l.errors, perr)
	l.failures[source]++
	if gameID != "" {
		l.failedID[gameID] = struct{}{}
	}
}

func (l *fetchLog) summary(total int) models.FetchSummary {
	status := make(map[string]string, len(l.calls))
	for source, n := range l.calls {
		switch failed := l.failures[source]; {
		case failed == 0:
			status[source] = models.SourceStatusOK
		case failed < n:
			status[source] = models.SourceStatusDegraded
		default:
			status[source] = models.SourceStatusFailed
		}
	}
	return models.FetchSummary{
		Total:        total,
		Succeeded:    total - len(l.failedID),
		Failed:       len(l.failedID),
		SourceStatus: status,
	}
}

// RefreshLibrary pulls the owned games, enriches each one with details,
// prices and a completion estimate, and merges the result into the stored
// library. Every provider call goes through the data cache. Provider
// failures land in FetchResult.Errors; only storage failures and
// cancellation are returned as errors.
func (s *LibraryService) RefreshLibrary(ctx context.Context) (models.FetchResult, error) {
	started := time.Now()
	log := newFetchLog()

	var fetched []models.GameRecord
	ownedCount := 0
	if s.sources.Ownership != nil {
		account := s.account()
		if !account.Complete() {
			return models.FetchResult{}, ErrMissingCredentials
		}

		owned, _, err := cache.Fetch(ctx, s.cache, "owned:"+account.SteamID, func(ctx context.Context) ([]models.GameRecord, error) {
			return s.sources.Ownership.OwnedGames(ctx, account)
		}, s.conf.Providers.OwnershipTTL, models.SourceOwnership)
		log.record(models.SourceOwnership, "", err)

		if err == nil {
			enriched, err := s.enrich(ctx, owned, log)
			if err != nil {
				return models.FetchResult{}, err
			}
			ownedCount = len(owned)
			fetched = append(owned, enriched...)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// fresh observations first so they win; the stored library fills gaps
	merged := aggregator.MergeAll(append(fetched, s.Library()...))
	if err := s.store.Set(storage.KeyLibrary, merged); err != nil {
		return models.FetchResult{}, err
	}
	if err := s.store.Set(storage.KeyTagProfile, recommend.BuildTagProfile(merged, s.now())); err != nil {
		return models.FetchResult{}, err
	}
	s.metrics.SetRecordsTotal("library", len(merged))

	result := models.FetchResult{
		Games:   merged,
		Errors:  log.errors,
		Summary: log.summary(ownedCount),
	}
	s.logger.Infof(providers.TypeApp, "Library refreshed: %d games, %d provider errors in %s",
		len(merged), len(result.Errors), time.Since(started))
	return result, nil
}

// enrich fans out one lookup per game and provider, bounded by
// providers.concurrency. Results come back in owned-game order.
func (s *LibraryService) enrich(ctx context.Context, owned []models.GameRecord, log *fetchLog) ([]models.GameRecord, error) {
	const perGame = 3
	slots := make([]*models.GameRecord, len(owned)*perGame)

	g, gctx := errgroup.WithContext(ctx)
	if n := s.conf.Providers.Concurrency; n > 0 {
		g.SetLimit(n)
	}

	for i := range owned {
		game := owned[i]
		base := i * perGame

		if s.sources.Ownership != nil {
			g.Go(func() error {
				r, _, err := cache.Fetch(gctx, s.cache, "details:"+game.ID, func(ctx context.Context) (*models.GameRecord, error) {
					return s.sources.Ownership.AppDetails(ctx, game.ID)
				}, s.conf.Providers.OwnershipTTL, models.SourceOwnership)
				log.record(models.SourceOwnership, game.ID, err)
				slots[base] = withID(r, game.ID)
				return gctx.Err()
			})
		}

		if s.sources.Pricing != nil {
			g.Go(func() error {
				r, _, err := cache.Fetch(gctx, s.cache, "price:"+game.ID, func(ctx context.Context) (*models.GameRecord, error) {
					return s.sources.Pricing.CurrentPrice(ctx, game.ID)
				}, s.conf.Providers.PricingTTL, models.SourcePricing)
				log.record(models.SourcePricing, game.ID, err)
				slots[base+1] = withID(r, game.ID)
				return gctx.Err()
			})
		}

		if s.sources.Estimate != nil && game.Title != "" {
			g.Go(func() error {
				minutes, _, err := cache.Fetch(gctx, s.cache, "estimate:"+game.Title, func(ctx context.Context) (*int, error) {
					return s.sources.Estimate.MainStoryMinutes(ctx, game.Title)
				}, s.conf.Providers.EstimateTTL, models.SourceEstimate)
				log.record(models.SourceEstimate, game.ID, err)
				if minutes != nil {
					slots[base+2] = &models.GameRecord{
						ID:                        game.ID,
						EstimatedMainStoryMinutes: minutes,
						SourceFlags:               []string{models.SourceEstimate},
					}
				}
				return gctx.Err()
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.GameRecord, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func withID(r *models.GameRecord, id string) *models.GameRecord {
	if r == nil {
		return nil
	}
	if r.ID == "" {
		r.ID = id
	}
	return r
}
