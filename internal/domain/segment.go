package domain

import (
	"fmt"
	"math"
	"reflect"
	"time"
)

type Segment struct {
	ID           string
	TripID       string
	Category     Category
	Title        string
	Provider     string
	StartTS      time.Time
	EndTS        time.Time
	DurationMin  int
	ComfortScore float64
	Price        float64
	Currency     string
	Locked       bool
	Status       SegmentStatus
	Attributes   map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (s *Segment) Validate() error {
	if !s.Category.Optimized() {
		return fmt.Errorf("%w: segment category must be transport, stay or activity, got %q", ErrValidation, s.Category)
	}
	if s.Price < 0 || math.IsNaN(s.Price) || s.DurationMin < 0 {
		return fmt.Errorf("%w: segment price and duration must not be negative", ErrValidation)
	}
	if s.ComfortScore < 0 || s.ComfortScore > 10 {
		return fmt.Errorf("%w: comfort score %.2f is outside [0,10]", ErrValidation, s.ComfortScore)
	}
	if s.EndTS.Before(s.StartTS) {
		return fmt.Errorf("%w: segment ends before it starts", ErrValidation)
	}
	return nil
}

// ApplyQuote copies the quote's offer onto the segment. Timing is left to the
// caller.
func (s *Segment) ApplyQuote(q Quote) {
	s.Title = CoalesceStr(q.Title, q.Source)
	s.Provider = q.Source
	s.Price = q.Price
	s.Currency = q.Currency
	s.DurationMin = q.DurationMin
	s.ComfortScore = q.ComfortScore
	s.Attributes = cloneAttributes(q.Attributes)
}

// SameContent reports whether two segments carry the same offer and timing,
// ignoring identity, status and audit timestamps.
func (s Segment) SameContent(o Segment) bool {
	return s.Category == o.Category &&
		s.Title == o.Title &&
		s.Provider == o.Provider &&
		s.StartTS.Equal(o.StartTS) &&
		s.EndTS.Equal(o.EndTS) &&
		s.DurationMin == o.DurationMin &&
		s.ComfortScore == o.ComfortScore &&
		s.Price == o.Price &&
		s.Currency == o.Currency &&
		s.Locked == o.Locked &&
		attributesEqual(s.Attributes, o.Attributes)
}

func cloneAttributes(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func attributesEqual(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
