package models

type BacklogStatus string

const (
	StatusUntouched      BacklogStatus = "untouched"
	StatusTasted         BacklogStatus = "tasted"
	StatusAbandonedEarly BacklogStatus = "abandoned_early"
	StatusAbandonedMid   BacklogStatus = "abandoned_mid"
	StatusCompleted      BacklogStatus = "completed"
	StatusUnknown        BacklogStatus = "unknown"
)

// BacklogStatuses lists every status in classification order.
var BacklogStatuses = []BacklogStatus{
	StatusUntouched,
	StatusTasted,
	StatusAbandonedEarly,
	StatusAbandonedMid,
	StatusCompleted,
	StatusUnknown,
}

// BacklogEntry is derived on demand and never persisted.
type BacklogEntry struct {
	Record                    GameRecord    `json:"record"`
	Status                    BacklogStatus `json:"status"`
	CompletionRatio           *float64      `json:"completion_ratio"`
	EstimatedRemainingMinutes *int          `json:"estimated_remaining_minutes"`
	WastedSpend               *float64      `json:"wasted_spend"`
	RescuePriority            float64       `json:"rescue_priority"`
}

type BacklogSummary struct {
	Total    int                   `json:"total"`
	ByStatus map[BacklogStatus]int `json:"by_status"`
}

type BacklogReport struct {
	Entries []BacklogEntry `json:"entries"`
	Summary BacklogSummary `json:"summary"`
}
