package optimizer

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capOf(v float64) *float64 { return &v }

var costHeavy = Weights{Cost: 0.6, Time: 0.2, Comfort: 0.2}

func TestSelectCategory_ExcludesOverCap(t *testing.T) {
	sel := SelectCategory(CategoryInput{
		Category: domain.CategoryTransport,
		Candidates: []Candidate{
			{ID: "premium", Price: 25000, DurationMin: 180, ComfortScore: 8, Seq: 1},
			{ID: "economy", Price: 18000, DurationMin: 300, ComfortScore: 6, Seq: 2},
		},
		Cap:     capOf(20000),
		Slots:   1,
		Weights: Weights{Cost: 0, Time: 0.5, Comfort: 0.5},
	})

	require.Nil(t, sel.Err)
	require.Len(t, sel.Picks, 1)
	assert.Equal(t, "premium", sel.Ranked[0].ID, "premium ranks first on utility")
	assert.Equal(t, "economy", sel.Picked()[0].ID, "but is excluded by the cap")
}

func TestSelectCategory_LockedContributionReducesCap(t *testing.T) {
	sel := SelectCategory(CategoryInput{
		Category: domain.CategoryActivity,
		Candidates: []Candidate{
			{ID: "dive", Price: 6000, DurationMin: 240, ComfortScore: 9},
			{ID: "walk", Price: 1500, DurationMin: 120, ComfortScore: 5},
		},
		Cap:     capOf(10000),
		Locked:  LockedContribution{Price: 5000, Count: 1},
		Slots:   2,
		Weights: Weights{Comfort: 1},
	})

	assert.Equal(t, 5000.0, sel.RemainingCap)
	require.Nil(t, sel.Err)
	assert.Equal(t, "walk", sel.Picked()[0].ID)
}

func TestSelectCategory_NoFeasibleCandidate(t *testing.T) {
	sel := SelectCategory(CategoryInput{
		Category: domain.CategoryActivity,
		Candidates: []Candidate{
			{ID: "safari", Price: 7000, DurationMin: 480, ComfortScore: 7},
			{ID: "cruise", Price: 5500, DurationMin: 180, ComfortScore: 6},
		},
		Cap:     capOf(5000),
		Slots:   1,
		Weights: costHeavy,
	})

	assert.Empty(t, sel.Picks)
	require.NotNil(t, sel.Err)
	assert.Equal(t, domain.CategoryActivity, sel.Err.Category)
	assert.Equal(t, 2, sel.Err.PoolSize)
	assert.Equal(t, 1, sel.Err.SlotsUnfilled)
	assert.Len(t, sel.Ranked, 2, "ranking stays available as fallback")
}

func TestSelectCategory_EmptyPool(t *testing.T) {
	sel := SelectCategory(CategoryInput{Category: domain.CategoryStay, Slots: 1, Weights: costHeavy})
	require.NotNil(t, sel.Err)
	assert.Equal(t, 0, sel.Err.PoolSize)
	assert.Contains(t, sel.Err.Error(), "no candidates")
}

func TestSelectCategory_AllSlotsLocked(t *testing.T) {
	sel := SelectCategory(CategoryInput{
		Category:   domain.CategoryTransport,
		Candidates: []Candidate{{ID: "x", Price: 1}},
		Locked:     LockedContribution{Price: 100, Count: 1},
		Slots:      1,
		Weights:    costHeavy,
	})
	assert.Empty(t, sel.Picks)
	assert.Nil(t, sel.Err)
}

func TestSelectCategory_MultipleSlotsShareCap(t *testing.T) {
	sel := SelectCategory(CategoryInput{
		Category: domain.CategoryActivity,
		Candidates: []Candidate{
			{ID: "a", Price: 4000, ComfortScore: 10, Seq: 1},
			{ID: "b", Price: 4000, ComfortScore: 9, Seq: 2},
			{ID: "c", Price: 1000, ComfortScore: 1, Seq: 3},
		},
		Cap:     capOf(5000),
		Slots:   2,
		Weights: Weights{Comfort: 1},
	})

	require.Nil(t, sel.Err)
	picked := sel.Picked()
	require.Len(t, picked, 2)
	assert.Equal(t, "a", picked[0].ID)
	assert.Equal(t, "c", picked[1].ID, "b no longer fits after a")
}

func TestSelectCategory_SkipsPickThatStrandsLaterSlots(t *testing.T) {
	sel := SelectCategory(CategoryInput{
		Category: domain.CategoryActivity,
		Candidates: []Candidate{
			{ID: "dive", Price: 90, ComfortScore: 9, Seq: 1},
			{ID: "walk", Price: 50, ComfortScore: 7, Seq: 2},
			{ID: "tour", Price: 40, ComfortScore: 5, Seq: 3},
		},
		Cap:     capOf(100),
		Slots:   2,
		Weights: Weights{Comfort: 1},
	})

	require.Nil(t, sel.Err)
	picked := sel.Picked()
	require.Len(t, picked, 2)
	assert.Equal(t, "walk", picked[0].ID)
	assert.Equal(t, "tour", picked[1].ID)
}

func TestSelectCategory_GreedyWhenNoFullFillExists(t *testing.T) {
	sel := SelectCategory(CategoryInput{
		Category: domain.CategoryActivity,
		Candidates: []Candidate{
			{ID: "dive", Price: 90, ComfortScore: 9, Seq: 1},
			{ID: "walk", Price: 80, ComfortScore: 7, Seq: 2},
		},
		Cap:     capOf(100),
		Slots:   2,
		Weights: Weights{Comfort: 1},
	})

	require.NotNil(t, sel.Err)
	assert.Equal(t, 1, sel.Err.SlotsUnfilled)
	require.Len(t, sel.Picks, 1)
	assert.Equal(t, "dive", sel.Picked()[0].ID, "best candidate still fills the slot it can")
}

func TestSelectCategory_Invariants_FillsWheneverCapAllows(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	for trial := 0; trial < 300; trial++ {
		slots := rng.Intn(3) + 1
		n := slots + rng.Intn(4)
		cands := make([]Candidate, n)
		prices := make([]float64, n)
		for i := range cands {
			prices[i] = float64(rng.Intn(20)+1) * 100
			cands[i] = Candidate{
				ID:           fmt.Sprintf("c%d", i),
				Price:        prices[i],
				DurationMin:  rng.Intn(600),
				ComfortScore: float64(rng.Intn(11)),
				Seq:          i,
			}
		}
		sort.Float64s(prices)
		var minimum float64
		for _, p := range prices[:slots] {
			minimum += p
		}
		limit := float64(rng.Intn(4000))

		sel := SelectCategory(CategoryInput{
			Category:   domain.CategoryActivity,
			Candidates: cands,
			Cap:        capOf(limit),
			Slots:      slots,
			Weights:    Weights{Cost: 0.2, Time: 0.3, Comfort: 0.5},
		})

		var spent float64
		for _, c := range sel.Picked() {
			spent += c.Price
		}
		assert.LessOrEqual(t, spent, limit+1e-6, "trial %d", trial)
		if minimum <= limit {
			assert.Nil(t, sel.Err, "trial %d: cap %.0f covers the cheapest %d", trial, limit, slots)
			assert.Len(t, sel.Picks, slots, "trial %d", trial)
		} else {
			assert.NotNil(t, sel.Err, "trial %d", trial)
		}
	}
}
