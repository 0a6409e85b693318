package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamelens/internal/models"
)

func session(gameID string, start time.Time, minutes int) models.PlaySession {
	end := start.Add(time.Duration(minutes) * time.Minute)
	return models.PlaySession{
		GameID:          gameID,
		StartedAt:       start,
		EndedAt:         &end,
		DurationMinutes: minutes,
		DetectedBy:      models.DetectedByProcess,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 20, 0, 0, 0, time.UTC)
}

func TestMonthly_Empty(t *testing.T) {
	out := Monthly(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestMonthly_GroupsAndSkipsOpenSessions(t *testing.T) {
	open := models.PlaySession{GameID: "x", StartedAt: day(2024, 3, 1)}
	sessions := []models.PlaySession{
		session("620", day(2024, 3, 2), 60),
		open,
		session("70", day(2024, 3, 9), 30),
		session("620", day(2024, 3, 20), 45),
		session("70", day(2024, 1, 5), 10),
	}

	out := Monthly(sessions)
	require.Len(t, out, 2)

	assert.Equal(t, "2024-01", out[0].Month.String())
	assert.Equal(t, 10, out[0].TotalMinutes)

	march := out[1]
	assert.Equal(t, "2024-03", march.Month.String())
	assert.Equal(t, 135, march.TotalMinutes)
	assert.Equal(t, 3, march.SessionCount)
	assert.Equal(t, []models.GameActivity{
		{GameID: "620", Minutes: 105, SessionCount: 2},
		{GameID: "70", Minutes: 30, SessionCount: 1},
	}, march.Games)
	require.NotNil(t, march.MostPlayed)
	assert.Equal(t, "620", *march.MostPlayed)
}

func TestMonthly_TieGoesToFirstSeen(t *testing.T) {
	out := Monthly([]models.PlaySession{
		session("b", day(2024, 5, 1), 40),
		session("a", day(2024, 5, 2), 40),
	})
	require.Len(t, out, 1)
	assert.Equal(t, "b", *out[0].MostPlayed)
}

func TestMonthly_UsesUTCMonth(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// 2024-04-01 01:00 JST is still March in UTC.
	out := Monthly([]models.PlaySession{session("620", time.Date(2024, 4, 1, 1, 0, 0, 0, tokyo), 30)})
	require.Len(t, out, 1)
	assert.Equal(t, "2024-03", out[0].Month.String())
}

func TestQuarterlyAndYearly(t *testing.T) {
	sessions := []models.PlaySession{
		session("a", day(2023, 12, 30), 20),
		session("a", day(2024, 1, 2), 10),
		session("b", day(2024, 3, 31), 15),
		session("a", day(2024, 4, 1), 60),
		session("c", day(2024, 11, 11), 5),
	}
	monthly := Monthly(sessions)

	quarterly := Quarterly(monthly)
	assert.Equal(t, []models.PeriodSummary{
		{Period: "2023-Q4", TotalMinutes: 20, SessionCount: 1},
		{Period: "2024-Q1", TotalMinutes: 25, SessionCount: 2},
		{Period: "2024-Q2", TotalMinutes: 60, SessionCount: 1},
		{Period: "2024-Q4", TotalMinutes: 5, SessionCount: 1},
	}, quarterly)

	yearly := Yearly(monthly)
	assert.Equal(t, []models.PeriodSummary{
		{Period: "2023", TotalMinutes: 20, SessionCount: 1},
		{Period: "2024", TotalMinutes: 90, SessionCount: 4},
	}, yearly)
}

func TestRollups_TotalsAgree(t *testing.T) {
	var sessions []models.PlaySession
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 200; i++ {
		sessions = append(sessions, session(string(rune('a'+i%5)), start.Add(time.Duration(i*97)*time.Hour), i%90+1))
	}

	summary := Summarize(sessions)
	sumMonths, sumQuarters, sumYears := 0, 0, 0
	for _, m := range summary.Monthly {
		sumMonths += m.TotalMinutes
	}
	for _, q := range summary.Quarterly {
		sumQuarters += q.TotalMinutes
	}
	yearByName := map[string]int{}
	for _, y := range summary.Yearly {
		sumYears += y.TotalMinutes
		yearByName[y.Period] = y.TotalMinutes
	}
	assert.Equal(t, sumMonths, sumQuarters)
	assert.Equal(t, sumMonths, sumYears)

	quartersPerYear := map[string]int{}
	for _, q := range summary.Quarterly {
		quartersPerYear[q.Period[:4]] += q.TotalMinutes
	}
	assert.Equal(t, yearByName, quartersPerYear)
}

func TestYearMonthJSON(t *testing.T) {
	ym := models.YearMonthOf(day(2024, 2, 10))
	text, err := ym.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2024-02", string(text))

	var back models.YearMonth
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, ym, back)
	assert.Error(t, back.UnmarshalText([]byte("Feb 2024")))
}
