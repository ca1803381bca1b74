package optimizer

import (
	"math"
	"sort"

	"github.com/alexanderramin/itinera/internal/app"
	"github.com/alexanderramin/itinera/internal/domain"
)

// LockedContribution is the fixed spend already committed in a category by
// segments the selector must not touch.
type LockedContribution struct {
	Price       float64
	DurationMin int
	Count       int
}

type CategoryInput struct {
	Category   domain.Category
	Candidates []Candidate
	// Cap is nil when the category is unconstrained.
	Cap    *float64
	Locked LockedContribution
	// Slots is the number of segments the category needs in total, locked ones included.
	Slots   int
	Weights Weights
}

// OpenSlots is how many selections the category still needs.
func (in CategoryInput) OpenSlots() int {
	if n := in.Slots - in.Locked.Count; n > 0 {
		return n
	}
	return 0
}

// RemainingCap is the cap minus locked spend, +Inf when unconstrained.
func (in CategoryInput) RemainingCap() float64 {
	if in.Cap == nil {
		return math.Inf(1)
	}
	return *in.Cap - in.Locked.Price
}

type CategorySelection struct {
	Category domain.Category
	Weights  Weights
	// Ranked is the full utility ranking; it is the fallback list for downgrades.
	Ranked       []ScoredCandidate
	Picks        []int
	RemainingCap float64
	Err          *app.NoFeasibleCandidateError
}

// Picked returns the chosen candidates in slot order.
func (s CategorySelection) Picked() []ScoredCandidate {
	out := make([]ScoredCandidate, len(s.Picks))
	for i, p := range s.Picks {
		out[i] = s.Ranked[p]
	}
	return out
}

// SelectCategory fills each open slot with the highest-ranked candidate that
// still fits the remaining cap. When the cap can cover every open slot, a
// candidate is only taken if the cheapest lower-ranked candidates can still
// fill the slots after it. Slots it cannot fill are reported as
// NoFeasibleCandidate alongside the partial selection.
func SelectCategory(in CategoryInput) CategorySelection {
	sel := CategorySelection{
		Category:     in.Category,
		Weights:      in.Weights,
		Ranked:       Rank(in.Candidates, in.Weights),
		RemainingCap: in.RemainingCap(),
	}

	open := in.OpenSlots()
	if open == 0 {
		return sel
	}

	budget := sel.RemainingCap
	reserve := cheapestSum(sel.Ranked, open) <= budget+moneyEpsilon
	for i, c := range sel.Ranked {
		need := open - len(sel.Picks)
		if need == 0 {
			break
		}
		cost := c.Price
		if reserve {
			cost += cheapestSum(sel.Ranked[i+1:], need-1)
		}
		if cost <= budget+moneyEpsilon {
			sel.Picks = append(sel.Picks, i)
			budget -= c.Price
		}
	}

	if len(sel.Picks) < open {
		sel.Err = &app.NoFeasibleCandidateError{
			Category:      in.Category,
			Cap:           in.Cap,
			RemainingCap:  sel.RemainingCap,
			PoolSize:      len(in.Candidates),
			SlotsUnfilled: open - len(sel.Picks),
		}
	}
	return sel
}

// cheapestSum is the total of the n lowest prices, +Inf when there are fewer
// than n candidates.
func cheapestSum(candidates []ScoredCandidate, n int) float64 {
	if n <= 0 {
		return 0
	}
	if len(candidates) < n {
		return math.Inf(1)
	}
	prices := make([]float64, len(candidates))
	for i, c := range candidates {
		prices[i] = c.Price
	}
	sort.Float64s(prices)
	var sum float64
	for _, p := range prices[:n] {
		sum += p
	}
	return sum
}

const moneyEpsilon = 1e-9
