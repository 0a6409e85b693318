package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"gamelens/internal/activity"
	"gamelens/internal/backlog"
	"gamelens/internal/cache"
	"gamelens/internal/economics"
	"gamelens/internal/models"
	"gamelens/internal/providers"
	"gamelens/internal/recommend"
	"gamelens/internal/sources"
	"gamelens/internal/storage"
	"gamelens/internal/structures"
)

var (
	ErrGameNotFound        = errors.New("game not found in library")
	ErrMissingCredentials  = errors.New("steam id and api key must be set")
	ErrProviderUnavailable = errors.New("provider not configured")
	ErrActivityDisabled    = errors.New("activity tracking is disabled")
)

// Setting keys understood by the service.
const (
	SettingSteamID  = "steamId"
	SettingSteamKey = "steamApiKey"
)

type LibraryServiceInterface interface {
	Library() []models.GameRecord
	RefreshLibrary(ctx context.Context) (models.FetchResult, error)
	Backlog() models.BacklogReport
	Statistics() Statistics
	TagProfile() models.TagProfile
	Recommendations(candidates []models.GameRecord) []models.ScoredRecord
	Similar(sourceID string, candidates []models.GameRecord) ([]models.ScoredRecord, error)
	SaleOutlook(ctx context.Context, record models.GameRecord, history []models.SaleEvent) (SaleOutlook, error)
	ActivitySummary() activity.Summary
	ProcessMappings() []models.ProcessMapping
	RegisterProcessMapping(mapping models.ProcessMapping) error
	Watchlist() []models.WatchlistEntry
	AddWatchlistEntry(entry models.WatchlistEntry) (bool, error)
	RemoveWatchlistEntry(gameID string) (bool, error)
	ImportWishlist(ctx context.Context) (ImportResult, error)
	Setting(key string, def any) any
	SetSetting(key string, value any) error
	Export(format string) Export
	ClearCache()
}

type Statistics struct {
	TotalGames           int               `json:"total_games"`
	TotalPlaytimeMinutes int               `json:"total_playtime_minutes"`
	TotalSpend           float64           `json:"total_spend"`
	AvgCostPerHour       float64           `json:"avg_cost_per_hour"`
	CostRanking          []models.CostRank `json:"cost_ranking"`
}

type SaleOutlook struct {
	Prediction models.SalePrediction `json:"prediction"`
	Advice     models.PurchaseAdvice `json:"advice"`
}

type ImportResult struct {
	Imported int                     `json:"imported"`
	Total    int                     `json:"total"`
	Errors   []*models.ProviderError `json:"errors"`
}

type Export struct {
	Library    []models.GameRecord     `json:"library"`
	Watchlist  []models.WatchlistEntry `json:"watchlist"`
	ExportedAt time.Time               `json:"exported_at"`
	Format     string                  `json:"format"`
}

// LibraryService owns the merged library and runs every analytic over it.
// Reads take a snapshot from the store; writes are serialized by mu.
type LibraryService struct {
	mu       sync.Mutex
	conf     *structures.Config
	store    storage.Store
	cache    cache.ManagerInterface
	sources  sources.Set
	monitor  activity.MonitorInterface
	analyzer *backlog.Analyzer
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	now      func() time.Time
}

func NewLibraryService(
	conf *structures.Config,
	store storage.Store,
	cacheManager cache.ManagerInterface,
	set sources.Set,
	monitor activity.MonitorInterface,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) *LibraryService {
	return &LibraryService{
		conf:    conf,
		store:   store,
		cache:   cacheManager,
		sources: set,
		monitor: monitor,
		analyzer: backlog.NewAnalyzer(backlog.Weights{
			Investment: conf.Backlog.InvestmentWeight,
			Price:      conf.Backlog.PriceWeight,
			PriceCap:   conf.Backlog.PriceCap,
		}),
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// SetClock replaces the time source used for profiles, advice and exports.
func (s *LibraryService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *LibraryService) Library() []models.GameRecord {
	return storage.GetOr(s.store, storage.KeyLibrary, []models.GameRecord{})
}

func (s *LibraryService) Backlog() models.BacklogReport {
	report := s.analyzer.Analyze(s.Library())
	for _, status := range models.BacklogStatuses {
		s.metrics.SetRecordsTotal(string(status), report.Summary.ByStatus[status])
	}
	return report
}

func (s *LibraryService) Statistics() Statistics {
	games := s.Library()
	stats := Statistics{TotalGames: len(games)}
	for i := range games {
		stats.TotalPlaytimeMinutes += games[i].Playtime()
		if games[i].BasePrice != nil {
			stats.TotalSpend += *games[i].BasePrice
		}
	}
	stats.CostRanking = economics.RankByCostEfficiency(games)
	stats.AvgCostPerHour = economics.AverageFiniteCost(stats.CostRanking)
	return stats
}

func (s *LibraryService) TagProfile() models.TagProfile {
	return recommend.BuildTagProfile(s.Library(), s.now())
}

func (s *LibraryService) Recommendations(candidates []models.GameRecord) []models.ScoredRecord {
	return recommend.RankCandidates(candidates, s.TagProfile())
}

// Similar ranks candidates by the tags they share with the library game
// sourceID, weighting rare tags higher.
func (s *LibraryService) Similar(sourceID string, candidates []models.GameRecord) ([]models.ScoredRecord, error) {
	library := s.Library()
	for i := range library {
		if library[i].ID == sourceID {
			rarity := recommend.TagRarity(library)
			return recommend.RankSimilar(candidates, library[i], rarity), nil
		}
	}
	return nil, ErrGameNotFound
}

// SaleOutlook predicts the next sale and advises on buying now. Without a
// supplied history the pricing provider's history is used.
func (s *LibraryService) SaleOutlook(ctx context.Context, record models.GameRecord, history []models.SaleEvent) (SaleOutlook, error) {
	if history == nil && s.sources.Pricing != nil && record.ID != "" {
		fetched, _, err := cache.Fetch(ctx, s.cache, "history:"+record.ID, func(ctx context.Context) ([]models.SaleEvent, error) {
			return s.sources.Pricing.PriceHistory(ctx, record.ID)
		}, s.conf.Providers.PricingTTL, models.SourcePricing)
		if err != nil {
			return SaleOutlook{}, err
		}
		history = fetched
	}
	prediction := economics.PredictSale(record.ID, history)
	return SaleOutlook{
		Prediction: prediction,
		Advice:     economics.Advise(record, prediction, s.now()),
	}, nil
}

func (s *LibraryService) ActivitySummary() activity.Summary {
	if s.monitor == nil {
		return activity.Summarize(nil)
	}
	return activity.Summarize(s.monitor.CompletedSessions())
}

func (s *LibraryService) ProcessMappings() []models.ProcessMapping {
	if s.monitor == nil {
		return []models.ProcessMapping{}
	}
	return s.monitor.Mappings()
}

func (s *LibraryService) RegisterProcessMapping(mapping models.ProcessMapping) error {
	if s.monitor == nil {
		return ErrActivityDisabled
	}
	return s.monitor.RegisterMapping(mapping)
}

func (s *LibraryService) Setting(key string, def any) any {
	return storage.Setting(s.store, key, def)
}

func (s *LibraryService) SetSetting(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return storage.SetSetting(s.store, key, value)
}

func (s *LibraryService) Export(format string) Export {
	if format == "" {
		format = "json"
	}
	return Export{
		Library:    s.Library(),
		Watchlist:  s.Watchlist(),
		ExportedAt: s.now().UTC(),
		Format:     format,
	}
}

func (s *LibraryService) ClearCache() {
	s.cache.Clear()
	s.logger.Infof(providers.TypeCache, "Data cache cleared")
}

func (s *LibraryService) account() sources.Account {
	return sources.Account{
		SteamID: storage.SettingString(s.store, SettingSteamID, ""),
		APIKey:  storage.SettingString(s.store, SettingSteamKey, ""),
	}
}
