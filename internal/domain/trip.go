package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrValidation marks input that violates a domain invariant.
var ErrValidation = errors.New("validation failed")

// DefaultCurrency is used when a trip is created without one.
const DefaultCurrency = "INR"

type Trip struct {
	ID          string
	Title       string
	Origin      string
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	Currency    string
	TotalBudget float64
	Status      TripStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Trip) Validate() error {
	if t.Origin == "" || t.Destination == "" {
		return fmt.Errorf("%w: origin and destination are required", ErrValidation)
	}
	if t.TotalBudget <= 0 || math.IsNaN(t.TotalBudget) {
		return fmt.Errorf("%w: total budget must be positive", ErrValidation)
	}
	if t.EndDate.Before(t.StartDate) {
		return fmt.Errorf("%w: end date %s is before start date %s", ErrValidation,
			t.EndDate.Format("2006-01-02"), t.StartDate.Format("2006-01-02"))
	}
	return nil
}

// Nights is the number of whole days between start and end (minimum 0).
func (t *Trip) Nights() int {
	n := int(math.Ceil(t.EndDate.Sub(t.StartDate).Hours() / 24))
	if n < 0 {
		return 0
	}
	return n
}

// MarkOptimized moves a draft trip to optimized. Other statuses are kept.
func (t *Trip) MarkOptimized(now time.Time) bool {
	if t.Status != TripDraft {
		return false
	}
	t.Status = TripOptimized
	t.UpdatedAt = now
	return true
}

type BudgetCap struct {
	ID        string
	TripID    string
	Category  Category
	Cap       float64
	CreatedAt time.Time
}

// ValidateCaps checks category uniqueness, non-negative caps and that the caps
// do not add up to more than the total budget.
func ValidateCaps(totalBudget float64, caps []BudgetCap) error {
	seen := make(map[Category]bool, len(caps))
	var sum float64
	for _, c := range caps {
		if !c.Category.Valid() {
			return fmt.Errorf("%w: unknown cap category %q", ErrValidation, c.Category)
		}
		if seen[c.Category] {
			return fmt.Errorf("%w: duplicate cap for category %s", ErrValidation, c.Category)
		}
		seen[c.Category] = true
		if c.Cap < 0 {
			return fmt.Errorf("%w: cap for %s must not be negative", ErrValidation, c.Category)
		}
		sum += c.Cap
	}
	if sum > totalBudget+moneyEpsilon {
		return fmt.Errorf("%w: category caps (%.2f) exceed total budget (%.2f)", ErrValidation, sum, totalBudget)
	}
	return nil
}

// CapFor returns the cap configured for category, or nil when unconstrained.
func CapFor(caps []BudgetCap, category Category) *float64 {
	for _, c := range caps {
		if c.Category == category {
			v := c.Cap
			return &v
		}
	}
	return nil
}

const moneyEpsilon = 1e-9
