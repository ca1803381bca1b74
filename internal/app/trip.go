package app

import (
	"github.com/alexanderramin/itinera/internal/domain"
)

type CreateTripRequest struct {
	Title       string
	Origin      string
	Destination string
	StartDate   string
	EndDate     string
	Currency    string
	TotalBudget float64
	// Caps of zero are not stored.
	Caps map[domain.Category]float64
	// Nil means balanced weights.
	Preferences *domain.Preferences
}

type CategorySpend struct {
	Category domain.Category
	Cap      *float64
	Spent    float64
}

// Over reports whether spend exceeds a configured cap.
func (c CategorySpend) Over() bool {
	return c.Cap != nil && c.Spent > *c.Cap
}

type TripSummary struct {
	Trip        *domain.Trip
	Preferences *domain.Preferences
	Segments    []*domain.Segment
	Totals      ItineraryTotals
	Spend       []CategorySpend
	Remaining   float64
	OverBudget  bool
}

type SuggestActivitiesRequest struct {
	TripID    string
	Interests []string
	// Budget is the per-activity ceiling. Zero falls back to the activity
	// cap, then to the trip budget.
	Budget float64
}
