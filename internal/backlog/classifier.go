// Package backlog triages a library into play-status buckets and ranks the
// unfinished games by how worthwhile they are to resume.
package backlog

import (
	"math"
	"sort"

	"gamelens/internal/models"
)

const (
	TastedCeilingMinutes = 30
	AbandonedEarlyRatio  = 0.2
	CompletedRatio       = 0.7
)

// MinOpenPriority is the priority given to an unfinished game whose
// weighted score is zero, so that a zero priority always means completed.
const MinOpenPriority = 1e-9

// Weights are the rescue-priority policy constants.
type Weights struct {
	Investment float64 `yaml:"investment" json:"investment"`
	Price      float64 `yaml:"price" json:"price"`
	PriceCap   float64 `yaml:"priceCap" json:"price_cap"`
}

func DefaultWeights() Weights {
	return Weights{Investment: 5, Price: 3, PriceCap: 60}
}

// Classify is total: every record maps to exactly one status.
func Classify(r models.GameRecord) models.BacklogStatus {
	pt := r.Playtime()
	switch {
	case pt <= 0:
		return models.StatusUntouched
	case pt <= TastedCeilingMinutes:
		return models.StatusTasted
	case !r.HasEstimate():
		return models.StatusUnknown
	}

	ratio := float64(pt) / float64(*r.EstimatedMainStoryMinutes)
	switch {
	case ratio < AbandonedEarlyRatio:
		return models.StatusAbandonedEarly
	case ratio < CompletedRatio:
		return models.StatusAbandonedMid
	default:
		return models.StatusCompleted
	}
}

type Analyzer struct {
	weights Weights
}

// NewAnalyzer falls back to DefaultWeights for any non-positive PriceCap.
func NewAnalyzer(w Weights) *Analyzer {
	if w.PriceCap <= 0 {
		w.PriceCap = DefaultWeights().PriceCap
	}
	return &Analyzer{weights: w}
}

var defaultAnalyzer = NewAnalyzer(DefaultWeights())

func RescuePriority(r models.GameRecord) float64 {
	return defaultAnalyzer.RescuePriority(r)
}

func Analyze(records []models.GameRecord) models.BacklogReport {
	return defaultAnalyzer.Analyze(records)
}

func (a *Analyzer) Weights() Weights {
	return a.weights
}

func (a *Analyzer) RescuePriority(r models.GameRecord) float64 {
	return a.priority(r, Classify(r))
}

func (a *Analyzer) priority(r models.GameRecord, status models.BacklogStatus) float64 {
	if status == models.StatusCompleted {
		return 0
	}

	investment := 0.0
	if ratio := completionRatio(r); ratio != nil {
		investment = *ratio
	}

	price := 0.0
	if r.BasePrice != nil && *r.BasePrice > 0 {
		price = math.Min(*r.BasePrice/a.weights.PriceCap, 1)
	}

	p := investment*a.weights.Investment + price*a.weights.Price
	if p <= 0 {
		return MinOpenPriority
	}
	return p
}

// Analyze builds one entry per record, ordered by descending rescue
// priority. The sort is stable: equal priorities keep input order.
func (a *Analyzer) Analyze(records []models.GameRecord) models.BacklogReport {
	report := models.BacklogReport{
		Entries: make([]models.BacklogEntry, 0, len(records)),
		Summary: models.BacklogSummary{
			Total:    len(records),
			ByStatus: make(map[models.BacklogStatus]int),
		},
	}

	for _, r := range records {
		status := Classify(r)
		entry := models.BacklogEntry{
			Record:          r,
			Status:          status,
			CompletionRatio: completionRatio(r),
			RescuePriority:  a.priority(r, status),
		}
		if r.HasEstimate() {
			entry.EstimatedRemainingMinutes = models.Int(max(0, *r.EstimatedMainStoryMinutes-r.Playtime()))
		}
		if status != models.StatusCompleted && r.BasePrice != nil && *r.BasePrice > 0 {
			entry.WastedSpend = models.Float(*r.BasePrice)
		}
		report.Entries = append(report.Entries, entry)
		report.Summary.ByStatus[status]++
	}

	sort.SliceStable(report.Entries, func(i, j int) bool {
		return report.Entries[i].RescuePriority > report.Entries[j].RescuePriority
	})
	return report
}

// completionRatio is playtime/estimate clamped to [0,1], nil without an estimate.
func completionRatio(r models.GameRecord) *float64 {
	if !r.HasEstimate() {
		return nil
	}
	ratio := float64(r.Playtime()) / float64(*r.EstimatedMainStoryMinutes)
	return models.Float(math.Max(0, math.Min(ratio, 1)))
}
