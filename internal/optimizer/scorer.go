package optimizer

import (
	"github.com/alexanderramin/itinera/internal/domain"
)

type Weights struct {
	Cost    float64
	Time    float64
	Comfort float64
}

func WeightsFrom(p domain.Preferences) Weights {
	return Weights{Cost: p.WeightCost, Time: p.WeightTime, Comfort: p.WeightComfort}
}

// Candidate is one option for a category slot.
type Candidate struct {
	ID           string
	Price        float64
	DurationMin  int
	ComfortScore float64
	// Seq is insertion order, the last ranking tie-break.
	Seq int
	// Incumbent is set when the candidate is an existing segment's current offer.
	Incumbent string
	// Bonus is added to utility when ranking only; Utility itself stays in [0,1].
	Bonus float64
}

type ScoredCandidate struct {
	Candidate
	NormPrice    float64
	NormDuration float64
	NormComfort  float64
	Utility      float64
}

// RankScore is the value candidates are ranked by.
func (s ScoredCandidate) RankScore() float64 {
	return s.Utility + s.Bonus
}

// Normalize min-max scales values into [0,1]. A degenerate set (max == min)
// maps every value to 0.
func Normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span <= 0 {
		return out
	}
	for i, v := range values {
		n := (v - lo) / span
		switch {
		case n < 0:
			n = 0
		case n > 1:
			n = 1
		}
		out[i] = n
	}
	return out
}

// Score computes normalized attributes and utility for each candidate
// relative to the whole set. Output order matches input order.
func Score(candidates []Candidate, w Weights) []ScoredCandidate {
	n := len(candidates)
	prices := make([]float64, n)
	durations := make([]float64, n)
	comforts := make([]float64, n)
	for i, c := range candidates {
		prices[i] = c.Price
		durations[i] = float64(c.DurationMin)
		comforts[i] = c.ComfortScore
	}
	np, nd, nc := Normalize(prices), Normalize(durations), Normalize(comforts)

	scored := make([]ScoredCandidate, n)
	for i, c := range candidates {
		scored[i] = ScoredCandidate{
			Candidate:    c,
			NormPrice:    np[i],
			NormDuration: nd[i],
			NormComfort:  nc[i],
			Utility:      w.Cost*(1-np[i]) + w.Time*(1-nd[i]) + w.Comfort*nc[i],
		}
	}
	return scored
}
