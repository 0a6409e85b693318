// Package activity turns raw play sessions into calendar rollups and runs
// the process-observation lifecycle that produces those sessions.
package activity

import (
	"fmt"
	"sort"

	"gamelens/internal/models"
)

// Monthly groups completed sessions by the UTC year-month they started in.
// Open sessions are ignored. Months come back in ascending order, games in
// first-seen order within their month.
func Monthly(sessions []models.PlaySession) []models.MonthlySummary {
	index := make(map[models.YearMonth]int)
	var months []models.MonthlySummary

	for _, s := range sessions {
		if !s.Completed() {
			continue
		}
		ym := models.YearMonthOf(s.StartedAt)
		i, ok := index[ym]
		if !ok {
			i = len(months)
			index[ym] = i
			months = append(months, models.MonthlySummary{Month: ym, Games: []models.GameActivity{}})
		}

		m := &months[i]
		m.TotalMinutes += s.DurationMinutes
		m.SessionCount++
		addGame(m, s)
	}

	for i := range months {
		months[i].MostPlayed = mostPlayed(months[i].Games)
	}
	sort.SliceStable(months, func(i, j int) bool {
		return months[i].Month.Before(months[j].Month)
	})
	if months == nil {
		return []models.MonthlySummary{}
	}
	return months
}

func addGame(m *models.MonthlySummary, s models.PlaySession) {
	for i := range m.Games {
		if m.Games[i].GameID == s.GameID {
			m.Games[i].Minutes += s.DurationMinutes
			m.Games[i].SessionCount++
			return
		}
	}
	m.Games = append(m.Games, models.GameActivity{GameID: s.GameID, Minutes: s.DurationMinutes, SessionCount: 1})
}

// mostPlayed folds left with >=, so the first game seen wins a tie.
func mostPlayed(games []models.GameActivity) *string {
	if len(games) == 0 {
		return nil
	}
	best := games[0]
	for _, g := range games[1:] {
		if !(best.Minutes >= g.Minutes) {
			best = g
		}
	}
	id := best.GameID
	return &id
}

// Quarterly is derived from the monthly rollup only, never from sessions.
func Quarterly(monthly []models.MonthlySummary) []models.PeriodSummary {
	return fold(monthly, func(ym models.YearMonth) string {
		return fmt.Sprintf("%04d-Q%d", ym.Year, ym.Quarter())
	})
}

// Yearly is derived from the monthly rollup, so each year's total equals the
// sum of its quarters.
func Yearly(monthly []models.MonthlySummary) []models.PeriodSummary {
	return fold(monthly, func(ym models.YearMonth) string {
		return fmt.Sprintf("%04d", ym.Year)
	})
}

func fold(monthly []models.MonthlySummary, key func(models.YearMonth) string) []models.PeriodSummary {
	index := make(map[string]int)
	out := []models.PeriodSummary{}
	for _, m := range monthly {
		k := key(m.Month)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, models.PeriodSummary{Period: k})
		}
		out[i].TotalMinutes += m.TotalMinutes
		out[i].SessionCount += m.SessionCount
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Period < out[j].Period
	})
	return out
}

type Summary struct {
	Monthly   []models.MonthlySummary `json:"monthly"`
	Quarterly []models.PeriodSummary  `json:"quarterly"`
	Yearly    []models.PeriodSummary  `json:"yearly"`
}

func Summarize(sessions []models.PlaySession) Summary {
	monthly := Monthly(sessions)
	return Summary{
		Monthly:   monthly,
		Quarterly: Quarterly(monthly),
		Yearly:    Yearly(monthly),
	}
}
