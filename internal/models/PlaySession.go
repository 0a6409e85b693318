package models

import "time"

const DetectedByProcess = "process"

// PlaySession is open while EndedAt is nil. Once closed it is appended to
// the completed log and never mutated again.
type PlaySession struct {
	GameID          string     `json:"game_id"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	DurationMinutes int        `json:"duration_minutes"`
	DetectedBy      string     `json:"detected_by"`
}

func (s *PlaySession) Completed() bool {
	return s.EndedAt != nil
}

// ProcessMapping ties a game to the executable names that identify it.
type ProcessMapping struct {
	GameID      string   `json:"game_id"`
	InstallDir  string   `json:"install_dir"`
	Executables []string `json:"executables"`
}

type GameActivity struct {
	GameID       string `json:"game_id"`
	Minutes      int    `json:"minutes"`
	SessionCount int    `json:"session_count"`
}

type MonthlySummary struct {
	Month        YearMonth      `json:"month"`
	TotalMinutes int            `json:"total_minutes"`
	SessionCount int            `json:"session_count"`
	Games        []GameActivity `json:"games"`
	MostPlayed   *string        `json:"most_played"`
}

type PeriodSummary struct {
	Period       string `json:"period"`
	TotalMinutes int    `json:"total_minutes"`
	SessionCount int    `json:"session_count"`
}
