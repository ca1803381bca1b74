package testutil

import (
	"time"

	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/google/uuid"
)

// TripStart is the default start date for test trips.
var TripStart = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// Trip options
type TripOption func(*domain.Trip)

func WithBudget(b float64) TripOption {
	return func(t *domain.Trip) {
		t.TotalBudget = b
	}
}

func WithDates(start, end time.Time) TripOption {
	return func(t *domain.Trip) {
		t.StartDate = start
		t.EndDate = end
	}
}

func WithTripStatus(s domain.TripStatus) TripOption {
	return func(t *domain.Trip) {
		t.Status = s
	}
}

func NewTestTrip(destination string, opts ...TripOption) *domain.Trip {
	ts := now()
	t := &domain.Trip{
		ID:          uuid.New().String(),
		Title:       "Trip to " + destination,
		Origin:      "Delhi",
		Destination: destination,
		StartDate:   TripStart,
		EndDate:     TripStart.AddDate(0, 0, 4),
		Currency:    domain.DefaultCurrency,
		TotalBudget: 50000,
		Status:      domain.TripDraft,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func NewTestCap(tripID string, category domain.Category, amount float64) *domain.BudgetCap {
	return &domain.BudgetCap{
		ID:        uuid.New().String(),
		TripID:    tripID,
		Category:  category,
		Cap:       amount,
		CreatedAt: now(),
	}
}

func NewTestPreferences(tripID string, cost, timeW, comfort float64) *domain.Preferences {
	ts := now()
	return &domain.Preferences{
		TripID:        tripID,
		WeightCost:    cost,
		WeightTime:    timeW,
		WeightComfort: comfort,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
}

// Quote options
type QuoteOption func(*domain.Quote)

func WithAttachedTo(segmentID string) QuoteOption {
	return func(q *domain.Quote) {
		q.Binding = domain.AttachedTo(segmentID)
	}
}

func WithQuoteTitle(title string) QuoteOption {
	return func(q *domain.Quote) {
		q.Title = title
	}
}

func WithAttributes(attrs map[string]any) QuoteOption {
	return func(q *domain.Quote) {
		q.Attributes = attrs
	}
}

func NewTestQuote(tripID string, category domain.Category, source string, price float64, durationMin int, comfort float64, opts ...QuoteOption) *domain.Quote {
	q := &domain.Quote{
		ID:           uuid.New().String(),
		TripID:       tripID,
		Category:     category,
		Title:        source + " " + string(category),
		Source:       source,
		Price:        price,
		Currency:     domain.DefaultCurrency,
		DurationMin:  durationMin,
		ComfortScore: comfort,
		CreatedAt:    now(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Segment options
type SegmentOption func(*domain.Segment)

func WithLocked() SegmentOption {
	return func(s *domain.Segment) {
		s.Locked = true
	}
}

func WithStart(start time.Time, durationMin int) SegmentOption {
	return func(s *domain.Segment) {
		s.StartTS = start
		s.DurationMin = durationMin
		s.EndTS = start.Add(time.Duration(durationMin) * time.Minute)
	}
}

func WithSegmentPrice(price float64) SegmentOption {
	return func(s *domain.Segment) {
		s.Price = price
	}
}

func WithComfort(c float64) SegmentOption {
	return func(s *domain.Segment) {
		s.ComfortScore = c
	}
}

func NewTestSegment(tripID string, category domain.Category, title string, opts ...SegmentOption) *domain.Segment {
	ts := now()
	s := &domain.Segment{
		ID:           uuid.New().String(),
		TripID:       tripID,
		Category:     category,
		Title:        title,
		Provider:     title,
		StartTS:      TripStart,
		EndTS:        TripStart.Add(2 * time.Hour),
		DurationMin:  120,
		ComfortScore: 5,
		Price:        1000,
		Currency:     domain.DefaultCurrency,
		Status:       domain.SegmentPlanned,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func NewTestEvent(tripID string, kind domain.EventKind, payload string) *domain.Event {
	return &domain.Event{
		ID:        uuid.New().String(),
		TripID:    tripID,
		Kind:      kind,
		Payload:   []byte(payload),
		Severity:  domain.SeverityWarning,
		CreatedAt: now(),
	}
}
