package optimizer

import (
	"sort"

	"github.com/alexanderramin/itinera/internal/app"
	"github.com/alexanderramin/itinera/internal/domain"
)

type ReconcileInput struct {
	TotalBudget float64
	// FixedTotal is spend the reconciler cannot change (locked or out-of-scope segments).
	FixedTotal float64
	Categories []CategorySelection
}

// SlotChoice is the final candidate for one open slot.
type SlotChoice struct {
	Category   domain.Category
	Slot       int
	Choice     ScoredCandidate
	Downgrades int
}

type ReconcileResult struct {
	Choices     []SlotChoice
	Failures    []*app.NoFeasibleCandidateError
	TotalBudget float64
	FixedTotal  float64
	Total       float64
	Iterations  int
	Downgrades  int
	Err         *app.BudgetInfeasibleError
}

type slotState struct {
	cat     int
	slot    int
	rank    int
	choices int
}

// Reconcile checks the joint total against the trip budget and, when over,
// repeatedly downgrades one slot to a strictly cheaper candidate until the
// total fits or no slot can get cheaper. The slot downgraded each round is the
// one whose category weights cost highest, then the one saving the most, then
// canonical category order, then slot index. Within a slot the replacement is
// the highest-ranked untaken candidate that is strictly cheaper.
func Reconcile(in ReconcileInput) ReconcileResult {
	res := ReconcileResult{
		TotalBudget: in.TotalBudget,
		FixedTotal:  in.FixedTotal,
	}

	var slots []*slotState
	iterationCap := 0
	for ci, cat := range in.Categories {
		if cat.Err != nil {
			res.Failures = append(res.Failures, cat.Err)
		}
		for si, rank := range cat.Picks {
			slots = append(slots, &slotState{cat: ci, slot: si, rank: rank})
			iterationCap += len(cat.Ranked)
		}
	}

	total := func() float64 {
		t := in.FixedTotal
		for _, s := range slots {
			t += in.Categories[s.cat].Ranked[s.rank].Price
		}
		return t
	}

	for total() > in.TotalBudget+moneyEpsilon && res.Iterations < iterationCap {
		best, target := pickDowngrade(in.Categories, slots)
		if best == nil {
			break
		}
		best.rank = target
		best.choices++
		res.Iterations++
		res.Downgrades++
	}

	res.Total = total()
	if res.Total > in.TotalBudget+moneyEpsilon {
		res.Err = &app.BudgetInfeasibleError{
			TotalBudget:   in.TotalBudget,
			AchievedTotal: res.Total,
			Deficit:       res.Total - in.TotalBudget,
		}
	}

	for _, s := range slots {
		cat := in.Categories[s.cat]
		res.Choices = append(res.Choices, SlotChoice{
			Category:   cat.Category,
			Slot:       s.slot,
			Choice:     cat.Ranked[s.rank],
			Downgrades: s.choices,
		})
	}
	sort.SliceStable(res.Choices, func(i, j int) bool {
		a, b := res.Choices[i], res.Choices[j]
		if a.Category.Order() != b.Category.Order() {
			return a.Category.Order() < b.Category.Order()
		}
		return a.Slot < b.Slot
	})
	return res
}

// pickDowngrade returns the slot to downgrade and its new rank, or nil when
// every slot already holds the cheapest candidate it can get.
func pickDowngrade(cats []CategorySelection, slots []*slotState) (*slotState, int) {
	var best *slotState
	bestTarget := -1
	var bestSaving float64

	for _, s := range slots {
		target := downgradeTarget(cats[s.cat], slots, s)
		if target < 0 {
			continue
		}
		cat := cats[s.cat]
		saving := cat.Ranked[s.rank].Price - cat.Ranked[target].Price
		if best == nil || preferDowngrade(cats, s, saving, best, bestSaving) {
			best, bestTarget, bestSaving = s, target, saving
		}
	}
	return best, bestTarget
}

func preferDowngrade(cats []CategorySelection, s *slotState, saving float64, cur *slotState, curSaving float64) bool {
	wa, wb := cats[s.cat].Weights.Cost, cats[cur.cat].Weights.Cost
	if wa-wb > utilityEpsilon || wb-wa > utilityEpsilon {
		return wa > wb
	}
	if saving-curSaving > moneyEpsilon || curSaving-saving > moneyEpsilon {
		return saving > curSaving
	}
	oa, ob := cats[s.cat].Category.Order(), cats[cur.cat].Category.Order()
	if oa != ob {
		return oa < ob
	}
	return s.slot < cur.slot
}

func downgradeTarget(cat CategorySelection, slots []*slotState, s *slotState) int {
	current := cat.Ranked[s.rank].Price
	for i, c := range cat.Ranked {
		if c.Price >= current-moneyEpsilon {
			continue
		}
		if takenByOther(slots, s, i) {
			continue
		}
		return i
	}
	return -1
}

func takenByOther(slots []*slotState, s *slotState, rank int) bool {
	for _, o := range slots {
		if o != s && o.cat == s.cat && o.rank == rank {
			return true
		}
	}
	return false
}
