package controllers

import (
	"context"

	"gamelens/internal/activity"
	"gamelens/internal/models"
	"gamelens/internal/services"
)

// mockService is a scripted services.LibraryServiceInterface.
type mockService struct {
	library    []models.GameRecord
	watchlist  []models.WatchlistEntry
	settings   map[string]any
	refresh    models.FetchResult
	refreshErr error
	similarErr error
	importRes  services.ImportResult
	importErr  error
	added      bool
	removed    bool
	mappings   []models.ProcessMapping
	mappingErr error

	libraryCalls int
	candidates   []models.GameRecord
	similarFrom  string
	saleHistory  []models.SaleEvent
	cacheCleared int
	exportFormat string
}

func (m *mockService) Library() []models.GameRecord {
	m.libraryCalls++
	return m.library
}

func (m *mockService) RefreshLibrary(_ context.Context) (models.FetchResult, error) {
	return m.refresh, m.refreshErr
}

func (m *mockService) Backlog() models.BacklogReport {
	return models.BacklogReport{
		Entries: []models.BacklogEntry{},
		Summary: models.BacklogSummary{Total: len(m.library), ByStatus: map[models.BacklogStatus]int{}},
	}
}

func (m *mockService) Statistics() services.Statistics {
	return services.Statistics{TotalGames: len(m.library)}
}

func (m *mockService) TagProfile() models.TagProfile {
	return models.TagProfile{Weights: map[string]float64{"RPG": 1}}
}

func (m *mockService) Recommendations(candidates []models.GameRecord) []models.ScoredRecord {
	m.candidates = candidates
	out := make([]models.ScoredRecord, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, models.ScoredRecord{Record: c, Score: 1})
	}
	return out
}

func (m *mockService) Similar(sourceID string, candidates []models.GameRecord) ([]models.ScoredRecord, error) {
	m.similarFrom = sourceID
	m.candidates = candidates
	if m.similarErr != nil {
		return nil, m.similarErr
	}
	return []models.ScoredRecord{}, nil
}

func (m *mockService) SaleOutlook(_ context.Context, record models.GameRecord, history []models.SaleEvent) (services.SaleOutlook, error) {
	m.saleHistory = history
	return services.SaleOutlook{
		Prediction: models.SalePrediction{GameID: record.ID, Confidence: models.ConfidenceInsufficient},
		Advice:     models.PurchaseAdvice{Verdict: models.VerdictUnknown},
	}, nil
}

func (m *mockService) ActivitySummary() activity.Summary {
	return activity.Summarize(nil)
}

func (m *mockService) ProcessMappings() []models.ProcessMapping {
	return m.mappings
}

func (m *mockService) RegisterProcessMapping(mapping models.ProcessMapping) error {
	if m.mappingErr != nil {
		return m.mappingErr
	}
	m.mappings = append(m.mappings, mapping)
	return nil
}

func (m *mockService) Watchlist() []models.WatchlistEntry {
	return m.watchlist
}

func (m *mockService) AddWatchlistEntry(entry models.WatchlistEntry) (bool, error) {
	if m.added {
		m.watchlist = append(m.watchlist, entry)
	}
	return m.added, nil
}

func (m *mockService) RemoveWatchlistEntry(_ string) (bool, error) {
	return m.removed, nil
}

func (m *mockService) ImportWishlist(_ context.Context) (services.ImportResult, error) {
	return m.importRes, m.importErr
}

func (m *mockService) Setting(key string, def any) any {
	if v, ok := m.settings[key]; ok {
		return v
	}
	return def
}

func (m *mockService) SetSetting(key string, value any) error {
	if m.settings == nil {
		m.settings = map[string]any{}
	}
	m.settings[key] = value
	return nil
}

func (m *mockService) Export(format string) services.Export {
	m.exportFormat = format
	return services.Export{Library: m.library, Watchlist: m.watchlist, Format: format}
}

func (m *mockService) ClearCache() {
	m.cacheCleared++
}
