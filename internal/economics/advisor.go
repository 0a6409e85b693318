package economics

import (
	"fmt"
	"math"
	"time"

	"gamelens/internal/models"
)

const (
	NearLowFactor     = 1.1
	SaleHorizonDays   = 60
	FullPriceDiscount = 0.10
)

// Advise returns a verdict from the first rule that matches, in this order:
// missing prices, near the historical low, a predicted sale within the
// horizon, close to full price, and otherwise discounted but not at its best.
func Advise(r models.GameRecord, prediction models.SalePrediction, now time.Time) models.PurchaseAdvice {
	if r.CurrentPrice == nil || r.BasePrice == nil {
		return models.PurchaseAdvice{
			Verdict: models.VerdictUnknown,
			Reasons: []string{"price data is incomplete"},
		}
	}

	current, base, low := *r.CurrentPrice, *r.BasePrice, r.HistoricalLow

	if low != nil && current <= *low*NearLowFactor {
		return models.PurchaseAdvice{
			Verdict: models.VerdictBuyNow,
			Reasons: []string{fmt.Sprintf("price is close to the historical low of $%.2f", *low)},
		}
	}

	if prediction.Confidence != models.ConfidenceInsufficient && prediction.NextLikelyPeriod != nil {
		days := prediction.NextLikelyPeriod.Start().Sub(now).Hours() / 24
		if days > 0 && days <= SaleHorizonDays {
			return models.PurchaseAdvice{
				Verdict: models.VerdictWait,
				Reasons: []string{fmt.Sprintf("a sale is likely in %s", prediction.NextLikelyPeriod)},
			}
		}
	}

	discount := 0.0
	if base > 0 {
		discount = 1 - current/base
	}

	if discount < FullPriceDiscount {
		return models.PurchaseAdvice{
			Verdict: models.VerdictExpensive,
			Reasons: withLow([]string{"current price is close to full price"}, low),
		}
	}

	return models.PurchaseAdvice{
		Verdict: models.VerdictWait,
		Reasons: withLow([]string{fmt.Sprintf("currently %d%% off", int(math.Round(discount*100)))}, low),
	}
}

func withLow(reasons []string, low *float64) []string {
	if low != nil {
		reasons = append(reasons, fmt.Sprintf("historical low is $%.2f", *low))
	}
	return reasons
}
