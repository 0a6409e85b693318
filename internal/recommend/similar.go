package recommend

import "gamelens/internal/models"

// ScoreSimilar adds 1 + rarity for every candidate tag the source also
// carries, so rarer shared tags weigh more, plus the review bonus.
func ScoreSimilar(candidate, source models.GameRecord, rarity map[string]float64) float64 {
	sourceTags := make(map[string]struct{}, len(source.Tags))
	for _, tag := range source.Tags {
		sourceTags[tag] = struct{}{}
	}

	score := 0.0
	for _, tag := range candidate.Tags {
		if _, ok := sourceTags[tag]; ok {
			score += 1 + rarity[tag]
		}
	}
	return max(0, score+reviewBonus(candidate))
}

func RankSimilar(candidates []models.GameRecord, source models.GameRecord, rarity map[string]float64) []models.ScoredRecord {
	return rank(candidates, func(c models.GameRecord) float64 {
		return ScoreSimilar(c, source, rarity)
	})
}
