package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/itinera/internal/app"
	"github.com/alexanderramin/itinera/internal/db"
	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/optimizer"
	"github.com/alexanderramin/itinera/internal/sourcing"
)

type optimizeService struct {
	deps     Deps
	observer UseCaseObserver
}

func NewOptimizeService(deps Deps, observers ...UseCaseObserver) OptimizeService {
	return &optimizeService{deps: deps.normalized(), observer: useCaseObserverOrNoop(observers)}
}

func (s *optimizeService) repos() txRepos {
	return txRepos{
		trips:    s.deps.Trips,
		caps:     s.deps.Caps,
		prefs:    s.deps.Prefs,
		quotes:   s.deps.Quotes,
		segments: s.deps.Segments,
		events:   s.deps.Events,
	}
}

func (s *optimizeService) Optimize(ctx context.Context, req app.OptimizeRequest) (resp *app.OptimizeResponse, err error) {
	startedAt := time.Now()
	fields := map[string]any{"trip_id": req.TripID}
	defer func() {
		partial := resp != nil && (len(resp.Infeasible) > 0 || resp.Budget.Infeasible != nil)
		if resp != nil {
			fields["changed"] = len(resp.Changed)
			fields["issues"] = len(resp.Infeasible)
			recordInfeasible(s.deps.Metrics, resp.Infeasible, resp.Budget)
		}
		finishUseCase(ctx, s.observer, s.deps.Metrics, "optimize", startedAt, err, partial, fields)
	}()

	unlock := s.deps.Locker.Lock(req.TripID)
	defer unlock()
	now := s.deps.now(req.Now)

	trip, err := s.deps.Trips.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}
	prefs, err := s.deps.Prefs.Get(ctx, trip.ID)
	if err != nil {
		return nil, fmt.Errorf("loading preferences: %w", err)
	}
	if err := checkPreferences(trip.ID, *prefs, s.deps.Options.WeightTolerance); err != nil {
		return nil, err
	}

	seeded, sourcingErrs, err := s.source(ctx, trip)
	if err != nil {
		return nil, err
	}

	resp = &app.OptimizeResponse{TripID: trip.ID}
	err = s.deps.UoW.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := reposFor(tx)

		for _, c := range domain.OptimizedCategories {
			for i := range seeded[c] {
				q := seeded[c][i]
				q.ID = s.deps.NewID()
				q.TripID = trip.ID
				q.Binding = domain.PoolBinding()
				q.Currency = domain.CoalesceStr(q.Currency, trip.Currency)
				q.CreatedAt = now
				if err := r.quotes.Create(ctx, &q); err != nil {
					return fmt.Errorf("seeding %s quotes: %w", c, err)
				}
			}
			if len(seeded[c]) > 0 {
				resp.Seeded = append(resp.Seeded, c)
			}
		}

		st, err := loadTripState(ctx, r, trip.ID)
		if err != nil {
			return err
		}
		p := planItinerary(st, optimizer.WeightsFrom(*st.prefs), s.deps.Options)
		build := optimizer.BuildItinerary(optimizer.BuildInput{
			Trip:     st.trip,
			Existing: st.segments,
			Choices:  p.reconcile.Choices,
			Quotes:   p.quotes,
			Status:   domain.SegmentPlanned,
			Now:      now,
			NewID:    s.deps.NewID,
		})
		if err := applyBuild(ctx, r, build); err != nil {
			return err
		}

		segments, err := r.segments.ListByTrip(ctx, trip.ID)
		if err != nil {
			return fmt.Errorf("reloading segments: %w", err)
		}
		// A run that placed nothing leaves a draft trip as draft so it is retried.
		if len(segments) > 0 && st.trip.MarkOptimized(now) {
			if err := r.trips.Update(ctx, st.trip); err != nil {
				return fmt.Errorf("marking trip optimized: %w", err)
			}
		}
		resp.Status = st.trip.Status
		resp.Segments = segments
		resp.Changed = build.Changed()
		resp.Infeasible = p.issues(sourcingErrs)
		resp.Budget = budgetOutcome(p.reconcile)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// source fetches candidates for every optimized category that has no quotes
// yet. It runs outside the transaction; per-category failures are returned
// as SourcingUnavailable errors and never abort the run.
func (s *optimizeService) source(ctx context.Context, trip *domain.Trip) (map[domain.Category][]domain.Quote, map[domain.Category]error, error) {
	counts, err := s.deps.Quotes.CountByCategory(ctx, trip.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("counting quotes: %w", err)
	}
	var missing []domain.Category
	for _, c := range domain.OptimizedCategories {
		if counts[c] == 0 {
			missing = append(missing, c)
		}
	}
	seeded := make(map[domain.Category][]domain.Quote)
	failures := make(map[domain.Category]error)
	if len(missing) == 0 {
		return seeded, failures, nil
	}
	if s.deps.Source == nil {
		for _, c := range missing {
			failures[c] = &app.SourcingUnavailableError{Category: c, Err: sourcing.ErrNoCandidates}
		}
		return seeded, failures, nil
	}

	caps, err := s.deps.Caps.ListByTrip(ctx, trip.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading caps: %w", err)
	}
	for _, res := range sourcing.FetchAll(ctx, s.deps.Source, sourcing.ContextFor(trip, caps), missing) {
		if res.Err != nil {
			failures[res.Category] = &app.SourcingUnavailableError{Category: res.Category, Err: res.Err}
			continue
		}
		var valid []domain.Quote
		for _, q := range res.Quotes {
			q.Category = res.Category
			if q.Validate() == nil {
				valid = append(valid, q)
			}
		}
		if len(valid) == 0 {
			failures[res.Category] = &app.SourcingUnavailableError{Category: res.Category, Err: sourcing.ErrNoCandidates}
			continue
		}
		seeded[res.Category] = valid
	}
	return seeded, failures, nil
}

// applyBuild persists a build result. New segments are inserted before any
// binding so every attach points at an existing row.
func applyBuild(ctx context.Context, r txRepos, build optimizer.BuildResult) error {
	for _, seg := range build.Creates {
		if err := r.segments.Create(ctx, seg); err != nil {
			return err
		}
	}
	for _, seg := range build.Updates {
		if err := r.segments.Update(ctx, seg); err != nil {
			return err
		}
	}
	for _, id := range build.Rebind {
		if err := r.quotes.Detach(ctx, id); err != nil {
			return err
		}
	}
	for _, b := range build.Bindings {
		if err := r.quotes.Attach(ctx, b.QuoteID, b.SegmentID); err != nil {
			return err
		}
	}
	return nil
}

func (s *optimizeService) Preview(ctx context.Context, req app.PreviewRequest) (resp *app.PreviewResponse, err error) {
	startedAt := time.Now()
	defer func() {
		finishUseCase(ctx, s.observer, s.deps.Metrics, "preview", startedAt, err, false,
			map[string]any{"trip_id": req.TripID})
	}()

	st, err := loadTripState(ctx, s.repos(), req.TripID)
	if err != nil {
		return nil, err
	}
	proposed := domain.Preferences{
		TripID:        st.trip.ID,
		WeightCost:    req.WeightCost,
		WeightTime:    req.WeightTime,
		WeightComfort: req.WeightComfort,
	}
	if err := checkPreferences(st.trip.ID, proposed, s.deps.Options.WeightTolerance); err != nil {
		return nil, err
	}

	p := planItinerary(st, optimizer.WeightsFrom(proposed), s.deps.Options)
	build := optimizer.BuildItinerary(optimizer.BuildInput{
		Trip:     st.trip,
		Existing: st.segments,
		Choices:  p.reconcile.Choices,
		Quotes:   p.quotes,
		Status:   domain.SegmentPlanned,
		Now:      s.deps.Clock(),
		NewID:    s.deps.NewID,
	})

	segments := append([]*domain.Segment{}, p.locked...)
	segments = append(segments, build.Creates...)
	segments = append(segments, build.Updates...)
	segments = append(segments, build.Unchanged...)
	sort.SliceStable(segments, func(i, j int) bool {
		if !segments[i].StartTS.Equal(segments[j].StartTS) {
			return segments[i].StartTS.Before(segments[j].StartTS)
		}
		return segments[i].Category.Order() < segments[j].Category.Order()
	})

	return &app.PreviewResponse{
		TripID:     st.trip.ID,
		Current:    app.TotalsOf(st.segments),
		Proposed:   app.TotalsOf(segments),
		Segments:   segments,
		Infeasible: p.issues(nil),
		Budget:     budgetOutcome(p.reconcile),
	}, nil
}
