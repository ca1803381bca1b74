package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/itinera/internal/domain"
)

type TripRepo interface {
	Create(ctx context.Context, t *domain.Trip) error
	GetByID(ctx context.Context, id string) (*domain.Trip, error)
	List(ctx context.Context) ([]*domain.Trip, error)
	Update(ctx context.Context, t *domain.Trip) error
	Delete(ctx context.Context, id string) error
}

type BudgetCapRepo interface {
	Create(ctx context.Context, c *domain.BudgetCap) error
	ListByTrip(ctx context.Context, tripID string) ([]domain.BudgetCap, error)
}

type PreferencesRepo interface {
	Get(ctx context.Context, tripID string) (*domain.Preferences, error)
	Upsert(ctx context.Context, p *domain.Preferences) error
}

type QuoteRepo interface {
	Create(ctx context.Context, q *domain.Quote) error
	GetByID(ctx context.Context, id string) (*domain.Quote, error)
	// ListByTrip returns quotes ordered by category then insertion order.
	ListByTrip(ctx context.Context, tripID string) ([]*domain.Quote, error)
	// ListPool returns unattached quotes of a category, cheapest first.
	ListPool(ctx context.Context, tripID string, category domain.Category, limit int) ([]*domain.Quote, error)
	CountByCategory(ctx context.Context, tripID string) (map[domain.Category]int, error)
	UpdatePrice(ctx context.Context, id string, price float64) error
	Attach(ctx context.Context, quoteID, segmentID string) error
	// Detach returns every quote bound to segmentID to the pool.
	Detach(ctx context.Context, segmentID string) error
}

type SegmentRepo interface {
	Create(ctx context.Context, s *domain.Segment) error
	GetByID(ctx context.Context, id string) (*domain.Segment, error)
	// ListByTrip returns segments ordered by start_ts ascending, then id.
	ListByTrip(ctx context.Context, tripID string) ([]*domain.Segment, error)
	// Update skips locked rows; Overwrite does not.
	Update(ctx context.Context, s *domain.Segment) error
	Overwrite(ctx context.Context, s *domain.Segment) error
	SetLocked(ctx context.Context, id string, locked bool, now time.Time) error
}

type EventRepo interface {
	Create(ctx context.Context, e *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	ListByTrip(ctx context.Context, tripID string) ([]*domain.Event, error)
}
