package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/itinera/internal/db"
	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/optimizer"
	"github.com/alexanderramin/itinera/internal/repository"
)

// AlternativesLimit is how many pool quotes ListAlternatives returns.
const AlternativesLimit = 3

type segmentService struct {
	deps     Deps
	observer UseCaseObserver
}

func NewSegmentService(deps Deps, observers ...UseCaseObserver) SegmentService {
	return &segmentService{deps: deps.normalized(), observer: useCaseObserverOrNoop(observers)}
}

func (s *segmentService) GetByID(ctx context.Context, id string) (*domain.Segment, error) {
	return s.deps.Segments.GetByID(ctx, id)
}

func (s *segmentService) ListByTrip(ctx context.Context, tripID string) ([]*domain.Segment, error) {
	if _, err := s.deps.Trips.GetByID(ctx, tripID); err != nil {
		return nil, err
	}
	return s.deps.Segments.ListByTrip(ctx, tripID)
}

func (s *segmentService) SetLock(ctx context.Context, segmentID string, locked bool) (seg *domain.Segment, err error) {
	startedAt := time.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "set-lock",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"segment_id": segmentID, "locked": locked},
		})
	}()

	current, err := s.deps.Segments.GetByID(ctx, segmentID)
	if err != nil {
		return nil, err
	}
	unlock := s.deps.Locker.Lock(current.TripID)
	defer unlock()

	err = s.deps.UoW.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := reposFor(tx)
		if err := r.segments.SetLocked(ctx, segmentID, locked, s.deps.Clock()); err != nil {
			return err
		}
		seg, err = r.segments.GetByID(ctx, segmentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return seg, nil
}

// ListAlternatives returns the cheapest unattached quotes in the segment's
// category.
func (s *segmentService) ListAlternatives(ctx context.Context, segmentID string) ([]*domain.Quote, error) {
	seg, err := s.deps.Segments.GetByID(ctx, segmentID)
	if err != nil {
		return nil, err
	}
	return s.deps.Quotes.ListPool(ctx, seg.TripID, seg.Category, AlternativesLimit)
}

// Replace puts a pool quote onto a segment on the user's behalf. Locks are
// ignored and the budget is not re-checked.
func (s *segmentService) Replace(ctx context.Context, segmentID, quoteID string) (seg *domain.Segment, err error) {
	startedAt := time.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "replace",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"segment_id": segmentID, "quote_id": quoteID},
		})
	}()

	current, err := s.deps.Segments.GetByID(ctx, segmentID)
	if err != nil {
		return nil, err
	}
	unlock := s.deps.Locker.Lock(current.TripID)
	defer unlock()

	err = s.deps.UoW.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := reposFor(tx)
		target, err := r.segments.GetByID(ctx, segmentID)
		if err != nil {
			return err
		}
		quote, err := r.quotes.GetByID(ctx, quoteID)
		if err != nil {
			return err
		}
		if quote.TripID != target.TripID || quote.Category != target.Category {
			return fmt.Errorf("quote %s for %s segment %s: %w", quoteID, target.Category, segmentID, repository.ErrNotFound)
		}
		if boundTo, ok := quote.Binding.SegmentID(); ok {
			if boundTo == target.ID {
				seg = target
				return nil
			}
			return fmt.Errorf("quote %s is attached to segment %s: %w", quoteID, boundTo, repository.ErrNotFound)
		}
		trip, err := r.trips.GetByID(ctx, target.TripID)
		if err != nil {
			return err
		}

		next := *target
		next.ApplyQuote(*quote)
		next.StartTS, next.EndTS = optimizer.PlaceSegment(next.Category, trip.StartDate, trip.EndDate, quote.DurationMin)
		next.Status = domain.SegmentManual
		next.UpdatedAt = s.deps.Clock()
		if err := r.segments.Overwrite(ctx, &next); err != nil {
			return err
		}
		if err := r.quotes.Detach(ctx, next.ID); err != nil {
			return err
		}
		if err := r.quotes.Attach(ctx, quote.ID, next.ID); err != nil {
			return err
		}
		seg = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return seg, nil
}
