package models

import (
	"math"
	"time"

	"github.com/goccy/go-json"
)

const TagSourceAuto = "auto"

// TagProfile maps tags to affinity weights in [0,1].
type TagProfile struct {
	Weights     map[string]float64 `json:"weights"`
	Source      map[string]string  `json:"source"`
	LastUpdated time.Time          `json:"last_updated"`
}

// Weight returns 0 for tags absent from the profile.
func (p *TagProfile) Weight(tag string) float64 {
	if p == nil {
		return 0
	}
	return p.Weights[tag]
}

type ScoredRecord struct {
	Record GameRecord `json:"record"`
	Score  float64    `json:"score"`
}

// CostRank pairs a record with its cost per hour. CostPerHour is nil when
// the price is unknown and +Inf when the game was never played.
type CostRank struct {
	Record      GameRecord `json:"record"`
	CostPerHour *float64   `json:"cost_per_hour"`
}

type costRankJSON struct {
	Record      GameRecord `json:"record"`
	CostPerHour *float64   `json:"cost_per_hour"`
	NeverPlayed bool       `json:"never_played,omitempty"`
}

// MarshalJSON renders the never-played +Inf cost as a null cost with
// never_played set, since JSON has no infinity.
func (c CostRank) MarshalJSON() ([]byte, error) {
	out := costRankJSON{Record: c.Record, CostPerHour: c.CostPerHour}
	if c.CostPerHour != nil && math.IsInf(*c.CostPerHour, 1) {
		out.CostPerHour = nil
		out.NeverPlayed = true
	}
	return json.Marshal(out)
}

func (c *CostRank) UnmarshalJSON(data []byte) error {
	var in costRankJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	c.Record = in.Record
	c.CostPerHour = in.CostPerHour
	if in.NeverPlayed {
		c.CostPerHour = Float(math.Inf(1))
	}
	return nil
}
