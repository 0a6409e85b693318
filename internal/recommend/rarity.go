package recommend

import (
	"github.com/RoaringBitmap/roaring/v2"

	"gamelens/internal/models"
)

// TagIndex maps every tag to the set of record positions that carry it.
// A record listing a tag twice is counted once.
type TagIndex struct {
	total int
	tags  map[string]*roaring.Bitmap
}

func NewTagIndex(records []models.GameRecord) *TagIndex {
	idx := &TagIndex{
		total: len(records),
		tags:  make(map[string]*roaring.Bitmap),
	}
	for i, r := range records {
		for _, tag := range r.Tags {
			bm, ok := idx.tags[tag]
			if !ok {
				bm = roaring.New()
				idx.tags[tag] = bm
			}
			bm.Add(uint32(i))
		}
	}
	return idx
}

func (idx *TagIndex) Total() int {
	return idx.total
}

// Count returns how many records carry tag.
func (idx *TagIndex) Count(tag string) int {
	bm, ok := idx.tags[tag]
	if !ok {
		return 0
	}
	return int(bm.GetCardinality())
}

// Shared returns the positions of records carrying every one of the tags.
func (idx *TagIndex) Shared(tags ...string) []uint32 {
	var acc *roaring.Bitmap
	for _, tag := range tags {
		bm, ok := idx.tags[tag]
		if !ok {
			return nil
		}
		if acc == nil {
			acc = bm.Clone()
			continue
		}
		acc.And(bm)
	}
	if acc == nil {
		return nil
	}
	return acc.ToArray()
}

// Rarity computes 1 - count/total per tag. With one record or fewer every
// present tag is forced to 0.
func (idx *TagIndex) Rarity() map[string]float64 {
	rarity := make(map[string]float64, len(idx.tags))
	for tag, bm := range idx.tags {
		if idx.total <= 1 {
			rarity[tag] = 0
			continue
		}
		rarity[tag] = 1 - float64(bm.GetCardinality())/float64(idx.total)
	}
	return rarity
}

func TagRarity(records []models.GameRecord) map[string]float64 {
	return NewTagIndex(records).Rarity()
}
