package domain

import (
	"fmt"
	"math"
	"time"
)

// QuoteBinding says whether a quote sits in the candidate pool or is attached
// to a segment. The zero value is the pool.
type QuoteBinding struct {
	segmentID string
}

func PoolBinding() QuoteBinding { return QuoteBinding{} }

func AttachedTo(segmentID string) QuoteBinding { return QuoteBinding{segmentID: segmentID} }

func (b QuoteBinding) IsPool() bool { return b.segmentID == "" }

// SegmentID returns the bound segment and true when attached.
func (b QuoteBinding) SegmentID() (string, bool) {
	return b.segmentID, b.segmentID != ""
}

func (b QuoteBinding) String() string {
	if b.IsPool() {
		return "pool"
	}
	return "attached(" + b.segmentID + ")"
}

type Quote struct {
	ID           string
	TripID       string
	Binding      QuoteBinding
	Category     Category
	Title        string
	Source       string
	Price        float64
	Currency     string
	DurationMin  int
	ComfortScore float64
	Attributes   map[string]any
	// Seq is the insertion order within the trip, assigned on create.
	Seq       int
	CreatedAt time.Time
}

func (q *Quote) Validate() error {
	if !q.Category.Optimized() {
		return fmt.Errorf("%w: quote category must be transport, stay or activity, got %q", ErrValidation, q.Category)
	}
	if q.Price < 0 || math.IsNaN(q.Price) {
		return fmt.Errorf("%w: quote price must not be negative", ErrValidation)
	}
	if q.DurationMin < 0 {
		return fmt.Errorf("%w: quote duration must not be negative", ErrValidation)
	}
	if q.ComfortScore < 0 || q.ComfortScore > 10 || math.IsNaN(q.ComfortScore) {
		return fmt.Errorf("%w: comfort score %.2f is outside [0,10]", ErrValidation, q.ComfortScore)
	}
	return nil
}
