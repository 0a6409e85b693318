package models

import "time"

type ReleaseStatus string

const (
	ReleaseReleased ReleaseStatus = "released"
	ReleaseUpcoming ReleaseStatus = "upcoming"
	ReleaseTBD      ReleaseStatus = "tbd"
)

// Source flags set by the providers that contributed to a record.
const (
	SourceOwnership = "steam"
	SourcePricing   = "itad"
	SourceEstimate  = "hltb"
)

// GameRecord is the canonical per-game record. Pointer fields are nullable;
// an empty Title or ReleaseStatus is treated as absent by the aggregator.
type GameRecord struct {
	ID                        string        `json:"id"`
	Title                     string        `json:"title"`
	PlaytimeMinutes           *int          `json:"playtime_minutes"`
	Tags                      []string      `json:"tags"`
	Genres                    []string      `json:"genres"`
	BasePrice                 *float64      `json:"base_price"`
	CurrentPrice              *float64      `json:"current_price"`
	HistoricalLow             *float64      `json:"historical_low"`
	DiscountRate              *float64      `json:"discount_rate"`
	EstimatedMainStoryMinutes *int          `json:"estimated_main_story_minutes"`
	ReviewScore               *int          `json:"review_score"`
	ReviewCount               *int          `json:"review_count"`
	LastPlayedAt              *time.Time    `json:"last_played_at"`
	ReleaseDate               *time.Time    `json:"release_date"`
	ReleaseStatus             ReleaseStatus `json:"release_status"`
	StoreURL                  *string       `json:"store_url"`
	DealURL                   *string       `json:"deal_url"`
	SourceFlags               []string      `json:"source_flags"`
}

// Playtime returns the playtime in minutes, 0 when unknown.
func (g *GameRecord) Playtime() int {
	if g.PlaytimeMinutes == nil {
		return 0
	}
	return *g.PlaytimeMinutes
}

// HasEstimate reports whether a usable completion-time estimate is present.
func (g *GameRecord) HasEstimate() bool {
	return g.EstimatedMainStoryMinutes != nil && *g.EstimatedMainStoryMinutes > 0
}

func (g *GameRecord) HasSource(flag string) bool {
	for _, f := range g.SourceFlags {
		if f == flag {
			return true
		}
	}
	return false
}

func Int(v int) *int { return &v }

func Float(v float64) *float64 { return &v }

func String(v string) *string { return &v }

func Time(v time.Time) *time.Time { return &v }
