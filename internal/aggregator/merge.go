// Package aggregator folds records for the same game reported by several
// providers into one record.
package aggregator

import "gamelens/internal/models"

// MergePair keeps every non-null value of base and fills the gaps from
// overlay. Tags and genres are substituted wholesale, never unioned: base's
// sequence wins whenever it is non-empty. SourceFlags is the ordered union.
func MergePair(base, overlay models.GameRecord) models.GameRecord {
	merged := models.GameRecord{
		ID:                        firstString(base.ID, overlay.ID),
		Title:                     firstString(base.Title, overlay.Title),
		PlaytimeMinutes:           first(base.PlaytimeMinutes, overlay.PlaytimeMinutes),
		Tags:                      firstSeq(base.Tags, overlay.Tags),
		Genres:                    firstSeq(base.Genres, overlay.Genres),
		BasePrice:                 first(base.BasePrice, overlay.BasePrice),
		CurrentPrice:              first(base.CurrentPrice, overlay.CurrentPrice),
		HistoricalLow:             first(base.HistoricalLow, overlay.HistoricalLow),
		DiscountRate:              first(base.DiscountRate, overlay.DiscountRate),
		EstimatedMainStoryMinutes: first(base.EstimatedMainStoryMinutes, overlay.EstimatedMainStoryMinutes),
		ReviewScore:               first(base.ReviewScore, overlay.ReviewScore),
		ReviewCount:               first(base.ReviewCount, overlay.ReviewCount),
		LastPlayedAt:              first(base.LastPlayedAt, overlay.LastPlayedAt),
		ReleaseDate:               first(base.ReleaseDate, overlay.ReleaseDate),
		ReleaseStatus:             models.ReleaseStatus(firstString(string(base.ReleaseStatus), string(overlay.ReleaseStatus))),
		StoreURL:                  first(base.StoreURL, overlay.StoreURL),
		DealURL:                   first(base.DealURL, overlay.DealURL),
		SourceFlags:               unionFlags(base.SourceFlags, overlay.SourceFlags),
	}
	return merged
}

// MergeAll groups records by id. The first record seen for an id is the
// running base and later ones are folded into it in encounter order. The
// output keeps the order in which ids first appeared.
func MergeAll(records []models.GameRecord) []models.GameRecord {
	if len(records) == 0 {
		return []models.GameRecord{}
	}

	index := make(map[string]int, len(records))
	result := make([]models.GameRecord, 0, len(records))
	for _, rec := range records {
		if i, ok := index[rec.ID]; ok {
			result[i] = MergePair(result[i], rec)
			continue
		}
		index[rec.ID] = len(result)
		result = append(result, rec)
	}
	return result
}

func first[T any](base, overlay *T) *T {
	if base != nil {
		return base
	}
	return overlay
}

func firstString(base, overlay string) string {
	if base != "" {
		return base
	}
	return overlay
}

func firstSeq(base, overlay []string) []string {
	if len(base) > 0 {
		return base
	}
	return overlay
}

func unionFlags(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, f := range list {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}
