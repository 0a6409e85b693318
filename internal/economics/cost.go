// Package economics holds the price-side analytics: cost per hour played,
// sale-cycle prediction and purchase-timing advice.
package economics

import (
	"math"
	"sort"

	"gamelens/internal/models"
)

// CostPerHour returns nil when the price is unknown, 0 for free games and
// +Inf for paid games that were never played.
func CostPerHour(r models.GameRecord) *float64 {
	if r.BasePrice == nil {
		return nil
	}
	if *r.BasePrice == 0 {
		return models.Float(0)
	}
	hours := float64(r.Playtime()) / 60
	if hours <= 0 {
		return models.Float(math.Inf(1))
	}
	return models.Float(*r.BasePrice / hours)
}

// RankByCostEfficiency orders by ascending cost: finite costs first, then
// +Inf, then unknown. Ties keep input order.
func RankByCostEfficiency(records []models.GameRecord) []models.CostRank {
	ranked := make([]models.CostRank, 0, len(records))
	for _, r := range records {
		ranked = append(ranked, models.CostRank{Record: r, CostPerHour: CostPerHour(r)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].CostPerHour, ranked[j].CostPerHour
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return *a < *b
	})
	return ranked
}

// AverageFiniteCost is the mean cost per hour over ranks with a known,
// finite cost; 0 when there are none.
func AverageFiniteCost(ranked []models.CostRank) float64 {
	sum, n := 0.0, 0
	for _, r := range ranked {
		if r.CostPerHour == nil || math.IsInf(*r.CostPerHour, 0) {
			continue
		}
		sum += *r.CostPerHour
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
