package economics

import (
	"sort"
	"time"

	"gamelens/internal/models"
)

const day = 24 * time.Hour

// PredictSale forecasts the next sale month from a title's discount history.
// Months are calendar months in UTC.
func PredictSale(gameID string, history []models.SaleEvent) models.SalePrediction {
	count := len(history)
	prediction := models.SalePrediction{
		GameID:     gameID,
		Confidence: models.ConfidenceInsufficient,
		BasedOn: models.SaleBasis{
			SaleCount:      count,
			SeasonalMonths: []int{},
		},
	}

	if count <= 1 {
		if count == 1 {
			prediction.BasedOn.LastSaleDate = models.Time(history[0].At)
		}
		return prediction
	}

	sorted := make([]models.SaleEvent, count)
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].At.Before(sorted[j].At)
	})

	var totalDays float64
	for i := 1; i < count; i++ {
		totalDays += sorted[i].At.Sub(sorted[i-1].At).Hours() / 24
	}
	avg := totalDays / float64(count-1)

	last := sorted[count-1].At
	next := models.YearMonthOf(last.Add(time.Duration(avg * float64(day))))

	prediction.Confidence = confidenceFor(count)
	prediction.NextLikelyPeriod = &next
	prediction.EstimatedDiscountRange = discountRange(sorted)
	prediction.BasedOn.AverageCycleDays = models.Float(avg)
	prediction.BasedOn.LastSaleDate = models.Time(last)
	prediction.BasedOn.SeasonalMonths = seasonalMonths(sorted)
	return prediction
}

func confidenceFor(count int) models.Confidence {
	switch {
	case count >= 5:
		return models.ConfidenceHigh
	case count >= 3:
		return models.ConfidenceMedium
	case count == 2:
		return models.ConfidenceLow
	default:
		return models.ConfidenceInsufficient
	}
}

// seasonalMonths lists, ascending, the calendar months with at least two sales.
func seasonalMonths(events []models.SaleEvent) []int {
	var counts [13]int
	for _, e := range events {
		counts[e.At.UTC().Month()]++
	}
	months := []int{}
	for m := 1; m <= 12; m++ {
		if counts[m] >= 2 {
			months = append(months, m)
		}
	}
	return months
}

func discountRange(events []models.SaleEvent) *models.DiscountRange {
	var r *models.DiscountRange
	for _, e := range events {
		if e.DiscountPercent <= 0 {
			continue
		}
		if r == nil {
			r = &models.DiscountRange{Min: e.DiscountPercent, Max: e.DiscountPercent}
			continue
		}
		r.Min = min(r.Min, e.DiscountPercent)
		r.Max = max(r.Max, e.DiscountPercent)
	}
	return r
}
