package app

import (
	"time"

	"github.com/alexanderramin/itinera/internal/domain"
)

type ReplanRequest struct {
	TripID  string
	EventID string
	Now     *time.Time
}

type ChangeReason string

const (
	ChangeReplaced ChangeReason = "replaced"
	ChangeRepriced ChangeReason = "repriced"
	ChangeShifted  ChangeReason = "shifted"
)

type SegmentChange struct {
	SegmentID   string
	Category    domain.Category
	Reasons     []ChangeReason
	PriceBefore float64
	PriceAfter  float64
	TitleBefore string
	TitleAfter  string
}

// SegmentIssue records a failure scoped to one impacted segment.
type SegmentIssue struct {
	SegmentID string
	Code      string
	Message   string
}

type ReplanResponse struct {
	TripID    string
	EventID   string
	Kind      domain.EventKind
	Impacted  []string
	Changed   []*domain.Segment
	Unchanged []*domain.Segment
	Changes   []SegmentChange
	Issues    []SegmentIssue
	Budget    BudgetOutcome
}

type ReplanErrorCode string

const (
	ReplanErrInvalidEvent  ReplanErrorCode = "INVALID_EVENT"
	ReplanErrTripMismatch  ReplanErrorCode = "EVENT_TRIP_MISMATCH"
	ReplanErrDataIntegrity ReplanErrorCode = "DATA_INTEGRITY"
)

type ReplanError struct {
	Code    ReplanErrorCode
	Message string
}

func (e *ReplanError) Error() string {
	return string(e.Code) + ": " + e.Message
}
