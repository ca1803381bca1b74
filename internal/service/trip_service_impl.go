package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/itinera/internal/app"
	"github.com/alexanderramin/itinera/internal/db"
	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/sourcing"
)

const dateLayout = "2006-01-02"

type tripService struct {
	deps     Deps
	observer UseCaseObserver
}

func NewTripService(deps Deps, observers ...UseCaseObserver) TripService {
	return &tripService{deps: deps.normalized(), observer: useCaseObserverOrNoop(observers)}
}

func (s *tripService) Create(ctx context.Context, req app.CreateTripRequest) (trip *domain.Trip, err error) {
	startedAt := time.Now()
	defer func() {
		fields := map[string]any{"destination": req.Destination}
		if trip != nil {
			fields["trip_id"] = trip.ID
		}
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "create-trip",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	start, err := time.Parse(dateLayout, strings.TrimSpace(req.StartDate))
	if err != nil {
		return nil, fmt.Errorf("%w: start date %q must be YYYY-MM-DD", domain.ErrValidation, req.StartDate)
	}
	end, err := time.Parse(dateLayout, strings.TrimSpace(req.EndDate))
	if err != nil {
		return nil, fmt.Errorf("%w: end date %q must be YYYY-MM-DD", domain.ErrValidation, req.EndDate)
	}

	now := s.deps.Clock()
	t := &domain.Trip{
		ID:          s.deps.NewID(),
		Title:       strings.TrimSpace(req.Title),
		Origin:      strings.TrimSpace(req.Origin),
		Destination: strings.TrimSpace(req.Destination),
		StartDate:   start,
		EndDate:     end,
		Currency:    strings.ToUpper(domain.CoalesceStr(strings.TrimSpace(req.Currency), domain.DefaultCurrency)),
		TotalBudget: req.TotalBudget,
		Status:      domain.TripDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Title == "" {
		t.Title = t.Origin + " to " + t.Destination
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	var caps []domain.BudgetCap
	for _, c := range append(append([]domain.Category{}, domain.OptimizedCategories...), domain.CategoryMisc) {
		amount, ok := req.Caps[c]
		if !ok || amount == 0 {
			continue
		}
		caps = append(caps, domain.BudgetCap{ID: s.deps.NewID(), TripID: t.ID, Category: c, Cap: amount, CreatedAt: now})
	}
	for c := range req.Caps {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: unknown cap category %q", domain.ErrValidation, c)
		}
	}
	if err := domain.ValidateCaps(t.TotalBudget, caps); err != nil {
		return nil, err
	}

	prefs := domain.BalancedPreferences(t.ID)
	if req.Preferences != nil {
		prefs = *req.Preferences
		prefs.TripID = t.ID
	}
	prefs.CreatedAt, prefs.UpdatedAt = now, now
	if err := prefs.Validate(s.deps.Options.WeightTolerance); err != nil {
		return nil, err
	}

	err = s.deps.UoW.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := reposFor(tx)
		if err := r.trips.Create(ctx, t); err != nil {
			return err
		}
		for i := range caps {
			if err := r.caps.Create(ctx, &caps[i]); err != nil {
				return err
			}
		}
		return r.prefs.Upsert(ctx, &prefs)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *tripService) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	return s.deps.Trips.GetByID(ctx, id)
}

func (s *tripService) List(ctx context.Context) ([]*domain.Trip, error) {
	return s.deps.Trips.List(ctx)
}

func (s *tripService) Delete(ctx context.Context, id string) error {
	unlock := s.deps.Locker.Lock(id)
	defer unlock()
	return s.deps.Trips.Delete(ctx, id)
}

// AdjustPreference sets one weight and rebalances the other two so the
// weights keep summing to 1.
func (s *tripService) AdjustPreference(ctx context.Context, tripID string, dim domain.WeightDimension, value float64) (*domain.Preferences, error) {
	unlock := s.deps.Locker.Lock(tripID)
	defer unlock()

	var prefs *domain.Preferences
	err := s.deps.UoW.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := reposFor(tx)
		if _, err := r.trips.GetByID(ctx, tripID); err != nil {
			return err
		}
		p, err := r.prefs.Get(ctx, tripID)
		if err != nil {
			return err
		}
		if err := p.Adjust(dim, value, s.deps.Clock()); err != nil {
			return err
		}
		if err := r.prefs.Upsert(ctx, p); err != nil {
			return err
		}
		prefs = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

func (s *tripService) Summary(ctx context.Context, tripID string) (*app.TripSummary, error) {
	trip, err := s.deps.Trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	prefs, err := s.deps.Prefs.Get(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("loading preferences: %w", err)
	}
	caps, err := s.deps.Caps.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("loading caps: %w", err)
	}
	segments, err := s.deps.Segments.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("loading segments: %w", err)
	}

	totals := app.TotalsOf(segments)
	spent := make(map[domain.Category]float64)
	for _, seg := range segments {
		spent[seg.Category] += seg.Price
	}
	var spend []app.CategorySpend
	for _, c := range append(append([]domain.Category{}, domain.OptimizedCategories...), domain.CategoryMisc) {
		cp := domain.CapFor(caps, c)
		if cp == nil && spent[c] == 0 {
			continue
		}
		spend = append(spend, app.CategorySpend{Category: c, Cap: cp, Spent: spent[c]})
	}

	return &app.TripSummary{
		Trip:        trip,
		Preferences: prefs,
		Segments:    segments,
		Totals:      totals,
		Spend:       spend,
		Remaining:   trip.TotalBudget - totals.Price,
		OverBudget:  totals.Price > trip.TotalBudget,
	}, nil
}

// RecordEvent validates and stores a disruption event. Replanning is a
// separate call.
func (s *tripService) RecordEvent(ctx context.Context, e *domain.Event) error {
	if e.ID == "" {
		e.ID = s.deps.NewID()
	}
	if e.Severity == "" {
		e.Severity = domain.SeverityInfo
	}
	e.CreatedAt = s.deps.Clock()
	if err := e.Validate(); err != nil {
		return err
	}
	if _, err := s.deps.Trips.GetByID(ctx, e.TripID); err != nil {
		return err
	}
	return s.deps.Events.Create(ctx, e)
}

func (s *tripService) ListEvents(ctx context.Context, tripID string) ([]*domain.Event, error) {
	if _, err := s.deps.Trips.GetByID(ctx, tripID); err != nil {
		return nil, err
	}
	return s.deps.Events.ListByTrip(ctx, tripID)
}

var errNoSuggester = errors.New("no language model configured for suggestions")

// SuggestActivities asks the suggester for activities matching the traveler's
// interests and stores them as pool quotes, so the next optimize run can
// pick them.
func (s *tripService) SuggestActivities(ctx context.Context, req app.SuggestActivitiesRequest) (quotes []*domain.Quote, err error) {
	startedAt := time.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "suggest-activities",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"trip_id": req.TripID, "interests": len(req.Interests), "suggested": len(quotes)},
		})
	}()

	if req.Budget < 0 || math.IsNaN(req.Budget) {
		return nil, fmt.Errorf("%w: suggestion budget must not be negative", domain.ErrValidation)
	}
	var interests []string
	for _, in := range req.Interests {
		if in = strings.TrimSpace(in); in != "" {
			interests = append(interests, in)
		}
	}

	trip, err := s.deps.Trips.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}
	if s.deps.Suggester == nil {
		return nil, &app.SourcingUnavailableError{Category: domain.CategoryActivity, Err: errNoSuggester}
	}
	caps, err := s.deps.Caps.ListByTrip(ctx, trip.ID)
	if err != nil {
		return nil, fmt.Errorf("loading caps: %w", err)
	}
	tc := sourcing.ContextFor(trip, caps)
	budget := req.Budget
	if budget == 0 {
		budget = tc.BudgetHint(domain.CategoryActivity)
	}

	suggested, err := s.deps.Suggester.SuggestActivities(ctx, tc, interests, budget)
	if err == nil && len(suggested) == 0 {
		err = sourcing.ErrNoCandidates
	}
	if err != nil {
		return nil, &app.SourcingUnavailableError{Category: domain.CategoryActivity, Err: err}
	}

	unlock := s.deps.Locker.Lock(trip.ID)
	defer unlock()

	now := s.deps.Clock()
	var stored []*domain.Quote
	err = s.deps.UoW.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := reposFor(tx)
		for i := range suggested {
			q := suggested[i]
			q.ID = s.deps.NewID()
			q.TripID = trip.ID
			q.Category = domain.CategoryActivity
			q.Binding = domain.PoolBinding()
			q.Currency = domain.CoalesceStr(q.Currency, trip.Currency)
			q.CreatedAt = now
			if err := q.Validate(); err != nil {
				return err
			}
			if err := r.quotes.Create(ctx, &q); err != nil {
				return fmt.Errorf("storing suggestion %q: %w", q.Title, err)
			}
			stored = append(stored, &q)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}
