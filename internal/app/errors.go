package app

import (
	"fmt"

	"github.com/alexanderramin/itinera/internal/domain"
)

type EngineErrorCode string

const (
	ErrNoFeasibleCandidate EngineErrorCode = "NO_FEASIBLE_CANDIDATE"
	ErrBudgetInfeasible    EngineErrorCode = "BUDGET_INFEASIBLE"
	ErrSourcingUnavailable EngineErrorCode = "SOURCING_UNAVAILABLE"
	ErrStalePreferences    EngineErrorCode = "STALE_PREFERENCES"
)

// NoFeasibleCandidateError reports a category whose every candidate exceeds
// the remaining cap. It is recoverable: other categories still optimize.
type NoFeasibleCandidateError struct {
	Category      domain.Category
	Cap           *float64
	RemainingCap  float64
	PoolSize      int
	SlotsUnfilled int
}

func (e *NoFeasibleCandidateError) Error() string {
	if e.PoolSize == 0 {
		return string(ErrNoFeasibleCandidate) + ": " + fmt.Sprintf("%s has no candidates", e.Category)
	}
	return string(ErrNoFeasibleCandidate) + ": " + fmt.Sprintf(
		"%s: none of %d candidates fit the remaining cap %.2f (%d slot(s) unfilled)",
		e.Category, e.PoolSize, e.RemainingCap, e.SlotsUnfilled)
}

// BudgetInfeasibleError carries the best achievable total after every
// downgrade was exhausted.
type BudgetInfeasibleError struct {
	TotalBudget   float64
	AchievedTotal float64
	Deficit       float64
}

func (e *BudgetInfeasibleError) Error() string {
	return string(ErrBudgetInfeasible) + ": " + fmt.Sprintf(
		"best achievable total %.2f exceeds budget %.2f by %.2f", e.AchievedTotal, e.TotalBudget, e.Deficit)
}

// SourcingUnavailableError wraps a quote provider failure for one category.
type SourcingUnavailableError struct {
	Category domain.Category
	Err      error
}

func (e *SourcingUnavailableError) Error() string {
	msg := fmt.Sprintf("%s: no candidates from provider", e.Category)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Category, e.Err)
	}
	return string(ErrSourcingUnavailable) + ": " + msg
}

func (e *SourcingUnavailableError) Unwrap() error { return e.Err }

// StalePreferencesError rejects an optimize call whose weights do not sum
// to 1. Weights are never renormalized silently.
type StalePreferencesError struct {
	TripID    string
	Sum       float64
	Tolerance float64
	Reason    string
}

func (e *StalePreferencesError) Error() string {
	return string(ErrStalePreferences) + ": " + fmt.Sprintf("trip %s: %s", e.TripID, e.Reason)
}

// CategoryIssue is a per-category failure surfaced alongside a best-effort result.
type CategoryIssue struct {
	Category domain.Category
	Code     EngineErrorCode
	Message  string
}

// IssueFromError converts a recoverable engine error into a CategoryIssue.
func IssueFromError(category domain.Category, err error) CategoryIssue {
	issue := CategoryIssue{Category: category, Message: err.Error()}
	switch err.(type) {
	case *NoFeasibleCandidateError:
		issue.Code = ErrNoFeasibleCandidate
	case *SourcingUnavailableError:
		issue.Code = ErrSourcingUnavailable
	case *BudgetInfeasibleError:
		issue.Code = ErrBudgetInfeasible
	default:
		issue.Code = "INTERNAL_ERROR"
	}
	return issue
}
