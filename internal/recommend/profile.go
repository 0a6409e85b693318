// Package recommend scores candidate games against the tag affinity of a
// played library and against a single source game.
package recommend

import (
	"sort"
	"time"

	"gamelens/internal/models"
)

const ReviewBonusWeight = 0.3

// BuildTagProfile spreads each played record's minutes over its tags and
// normalizes by the largest total, so weights land in [0,1].
func BuildTagProfile(records []models.GameRecord, now time.Time) models.TagProfile {
	totals := make(map[string]float64)
	for _, r := range records {
		pt := r.Playtime()
		if pt <= 0 {
			continue
		}
		for _, tag := range r.Tags {
			totals[tag] += float64(pt)
		}
	}

	maxTotal := 0.0
	for _, v := range totals {
		maxTotal = max(maxTotal, v)
	}

	profile := models.TagProfile{
		Weights:     make(map[string]float64, len(totals)),
		Source:      make(map[string]string, len(totals)),
		LastUpdated: now,
	}
	if maxTotal <= 0 {
		return profile
	}
	for tag, v := range totals {
		profile.Weights[tag] = v / maxTotal
		profile.Source[tag] = models.TagSourceAuto
	}
	return profile
}

// reviewBonus applies only when both the score and the count are known.
func reviewBonus(r models.GameRecord) float64 {
	if r.ReviewScore == nil || r.ReviewCount == nil {
		return 0
	}
	return float64(*r.ReviewScore) / 100 * ReviewBonusWeight
}

func ScoreCandidate(candidate models.GameRecord, profile models.TagProfile) float64 {
	score := 0.0
	for _, tag := range candidate.Tags {
		score += profile.Weight(tag)
	}
	return max(0, score+reviewBonus(candidate))
}

// RankCandidates orders by descending score; equal scores keep input order.
func RankCandidates(candidates []models.GameRecord, profile models.TagProfile) []models.ScoredRecord {
	return rank(candidates, func(c models.GameRecord) float64 {
		return ScoreCandidate(c, profile)
	})
}

func rank(candidates []models.GameRecord, score func(models.GameRecord) float64) []models.ScoredRecord {
	ranked := make([]models.ScoredRecord, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, models.ScoredRecord{Record: c, Score: score(c)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
