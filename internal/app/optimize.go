package app

import (
	"time"

	"github.com/alexanderramin/itinera/internal/domain"
)

type OptimizeRequest struct {
	TripID string
	Now    *time.Time
}

// BudgetOutcome summarizes the reconciler's result for a run.
type BudgetOutcome struct {
	TotalBudget float64
	Total       float64
	FixedTotal  float64
	Downgrades  int
	Infeasible  *BudgetInfeasibleError
}

// Remaining is the unspent budget; negative when over.
func (b BudgetOutcome) Remaining() float64 {
	return b.TotalBudget - b.Total
}

type OptimizeResponse struct {
	TripID     string
	Status     domain.TripStatus
	Segments   []*domain.Segment
	Changed    []string
	Infeasible []CategoryIssue
	Seeded     []domain.Category
	Budget     BudgetOutcome
}

// ItineraryTotals is the side-by-side view of a plan.
type ItineraryTotals struct {
	Segments    int
	Price       float64
	DurationMin int
	AvgComfort  float64
}

// TotalsOf aggregates price, time and average comfort over segments.
func TotalsOf(segments []*domain.Segment) ItineraryTotals {
	var t ItineraryTotals
	var comfort float64
	for _, s := range segments {
		t.Segments++
		t.Price += s.Price
		t.DurationMin += s.DurationMin
		comfort += s.ComfortScore
	}
	if t.Segments > 0 {
		t.AvgComfort = comfort / float64(t.Segments)
	}
	return t
}

// PreviewRequest runs the optimizer with proposed weights without persisting.
type PreviewRequest struct {
	TripID        string
	WeightCost    float64
	WeightTime    float64
	WeightComfort float64
}

type PreviewResponse struct {
	TripID     string
	Current    ItineraryTotals
	Proposed   ItineraryTotals
	Segments   []*domain.Segment
	Infeasible []CategoryIssue
	Budget     BudgetOutcome
}
