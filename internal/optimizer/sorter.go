package optimizer

import (
	"sort"
)

// utilityEpsilon absorbs float noise when comparing utilities.
const utilityEpsilon = 1e-9

// RankByUtility sorts scored candidates by the deterministic ranking rules:
// 1. Rank score (utility plus bonus): higher first
// 2. Price: lower first
// 3. Duration: shorter first
// 4. Seq: insertion order
// 5. ID: lexical ascending
func RankByUtility(candidates []ScoredCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]

		// 1. Rank score
		if ra, rb := a.RankScore(), b.RankScore(); ra-rb > utilityEpsilon || rb-ra > utilityEpsilon {
			return ra > rb
		}

		// 2. Price
		if a.Price != b.Price {
			return a.Price < b.Price
		}

		// 3. Duration
		if a.DurationMin != b.DurationMin {
			return a.DurationMin < b.DurationMin
		}

		// 4. Insertion order
		if a.Seq != b.Seq {
			return a.Seq < b.Seq
		}

		return a.ID < b.ID
	})
}

// Rank scores and sorts in one step.
func Rank(candidates []Candidate, w Weights) []ScoredCandidate {
	scored := Score(candidates, w)
	RankByUtility(scored)
	return scored
}
