package models

import (
	"fmt"
	"time"
)

type Confidence string

const (
	ConfidenceInsufficient Confidence = "insufficient"
	ConfidenceLow          Confidence = "low"
	ConfidenceMedium       Confidence = "medium"
	ConfidenceHigh         Confidence = "high"
)

// SaleEvent is one observed discount in a title's price history.
type SaleEvent struct {
	At              time.Time `json:"at"`
	Price           *float64  `json:"price"`
	DiscountPercent float64   `json:"discount_percent"`
}

// YearMonth is a calendar month, rendered as "2006-01".
type YearMonth struct {
	Year  int
	Month time.Month
}

func YearMonthOf(t time.Time) YearMonth {
	t = t.UTC()
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Start returns midnight UTC on the first day of the month.
func (ym YearMonth) Start() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Quarter returns 1..4.
func (ym YearMonth) Quarter() int {
	return (int(ym.Month) + 2) / 3
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

func (ym YearMonth) MarshalText() ([]byte, error) {
	return []byte(ym.String()), nil
}

func (ym *YearMonth) UnmarshalText(text []byte) error {
	t, err := time.Parse("2006-01", string(text))
	if err != nil {
		return fmt.Errorf("invalid year-month %q: %w", text, err)
	}
	*ym = YearMonthOf(t)
	return nil
}

func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

type DiscountRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type SaleBasis struct {
	SaleCount        int        `json:"sale_count"`
	AverageCycleDays *float64   `json:"average_cycle_days"`
	LastSaleDate     *time.Time `json:"last_sale_date"`
	SeasonalMonths   []int      `json:"seasonal_months"`
}

type SalePrediction struct {
	GameID                 string         `json:"game_id"`
	NextLikelyPeriod       *YearMonth     `json:"next_likely_period"`
	EstimatedDiscountRange *DiscountRange `json:"estimated_discount_range"`
	Confidence             Confidence     `json:"confidence"`
	BasedOn                SaleBasis      `json:"based_on"`
}

type Verdict string

const (
	VerdictBuyNow    Verdict = "buy_now"
	VerdictWait      Verdict = "wait"
	VerdictExpensive Verdict = "expensive"
	VerdictUnknown   Verdict = "unknown"
)

type PurchaseAdvice struct {
	Verdict Verdict  `json:"verdict"`
	Reasons []string `json:"reasons"`
}
