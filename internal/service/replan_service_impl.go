package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/itinera/internal/app"
	"github.com/alexanderramin/itinera/internal/db"
	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/optimizer"
	"github.com/alexanderramin/itinera/internal/repository"
)

type replanService struct {
	deps     Deps
	observer UseCaseObserver
}

func NewReplanService(deps Deps, observers ...UseCaseObserver) ReplanService {
	return &replanService{deps: deps.normalized(), observer: useCaseObserverOrNoop(observers)}
}

func (s *replanService) Replan(ctx context.Context, req app.ReplanRequest) (resp *app.ReplanResponse, err error) {
	startedAt := time.Now()
	fields := map[string]any{"trip_id": req.TripID, "event_id": req.EventID}
	defer func() {
		partial := resp != nil && (len(resp.Issues) > 0 || resp.Budget.Infeasible != nil)
		if resp != nil {
			fields["kind"] = string(resp.Kind)
			fields["impacted"] = len(resp.Impacted)
			fields["changed"] = len(resp.Changed)
			s.deps.Metrics.ObserveImpacted(len(resp.Impacted))
		}
		finishUseCase(ctx, s.observer, s.deps.Metrics, "replan", startedAt, err, partial, fields)
	}()

	unlock := s.deps.Locker.Lock(req.TripID)
	defer unlock()
	now := s.deps.now(req.Now)

	err = s.deps.UoW.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := reposFor(tx)

		event, err := r.events.GetByID(ctx, req.EventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &app.ReplanError{Code: app.ReplanErrInvalidEvent, Message: err.Error()}
			}
			return err
		}
		if event.TripID != req.TripID {
			return &app.ReplanError{
				Code:    app.ReplanErrTripMismatch,
				Message: fmt.Sprintf("event %s belongs to trip %s, not %s", event.ID, event.TripID, req.TripID),
			}
		}

		st, err := loadTripState(ctx, r, req.TripID)
		if err != nil {
			return err
		}
		if err := checkPreferences(st.trip.ID, *st.prefs, s.deps.Options.WeightTolerance); err != nil {
			return err
		}
		w := optimizer.WeightsFrom(*st.prefs)

		impact, err := optimizer.AnalyzeImpact(optimizer.ImpactInput{
			Event:    event,
			Trip:     st.trip,
			Segments: st.segments,
			Quotes:   st.quotes,
			Weights:  w,
			Margin:   s.deps.Options.ImprovementMargin,
		})
		if err != nil {
			return &app.ReplanError{Code: app.ReplanErrInvalidEvent, Message: err.Error()}
		}

		if err := persistQuotePrices(ctx, r, impact.QuotePrices); err != nil {
			return err
		}

		var impacted, fixed []*domain.Segment
		for _, seg := range st.segments {
			if !impact.IsImpacted(seg.ID) {
				fixed = append(fixed, seg)
				continue
			}
			if seg.Locked {
				return &app.ReplanError{
					Code:    app.ReplanErrDataIntegrity,
					Message: fmt.Sprintf("locked segment %s was marked impacted", seg.ID),
				}
			}
			next := *seg
			if price, ok := impact.SegmentPrices[seg.ID]; ok {
				next.Price = price
			}
			impacted = append(impacted, &next)
		}

		var pool []*domain.Quote
		for _, q := range st.quotes {
			if !q.Binding.IsPool() {
				continue
			}
			next := *q
			if price, ok := impact.QuotePrices[q.ID]; ok {
				next.Price = price
			}
			pool = append(pool, &next)
		}

		resp = &app.ReplanResponse{
			TripID:   st.trip.ID,
			EventID:  event.ID,
			Kind:     event.Kind,
			Impacted: impact.Impacted,
			Issues:   impact.Issues,
		}

		sel := optimizer.Reselect(optimizer.ReselectInput{
			Trip:     st.trip,
			Impacted: impacted,
			Fixed:    fixed,
			Pool:     pool,
			Caps:     st.caps,
			Weights:  w,
			Margin:   s.deps.Options.ImprovementMargin,
			ShiftMin: impact.ShiftMin,
		})
		resp.Budget = budgetOutcome(sel.Reconcile)

		original := make(map[string]*domain.Segment, len(st.segments))
		for _, seg := range st.segments {
			original[seg.ID] = seg
		}
		changed := make(map[string]bool)
		for _, out := range sel.Outcomes {
			if out.Issue != nil {
				resp.Issues = append(resp.Issues, *out.Issue)
			}
			before := original[out.Segment.ID]
			if out.Quote != nil {
				if err := r.quotes.Detach(ctx, before.ID); err != nil {
					return err
				}
				if err := r.quotes.Attach(ctx, out.Quote.ID, before.ID); err != nil {
					return err
				}
			}
			if out.Segment.SameContent(*before) {
				continue
			}
			next := out.Segment
			next.Status = domain.SegmentReplanned
			next.UpdatedAt = now
			if err := r.segments.Update(ctx, next); err != nil {
				return err
			}
			changed[next.ID] = true
			resp.Changed = append(resp.Changed, next)
			resp.Changes = append(resp.Changes, describeChange(before, next, out.Quote != nil))
		}
		for _, seg := range st.segments {
			if !changed[seg.ID] {
				resp.Unchanged = append(resp.Unchanged, seg)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func persistQuotePrices(ctx context.Context, r txRepos, prices map[string]float64) error {
	ids := make([]string, 0, len(prices))
	for id := range prices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := r.quotes.UpdatePrice(ctx, id, prices[id]); err != nil {
			return fmt.Errorf("refreshing quote price: %w", err)
		}
	}
	return nil
}

func describeChange(before, after *domain.Segment, replaced bool) app.SegmentChange {
	c := app.SegmentChange{
		SegmentID:   after.ID,
		Category:    after.Category,
		PriceBefore: before.Price,
		PriceAfter:  after.Price,
		TitleBefore: before.Title,
		TitleAfter:  after.Title,
	}
	switch {
	case replaced:
		c.Reasons = append(c.Reasons, app.ChangeReplaced)
	case before.Price != after.Price:
		c.Reasons = append(c.Reasons, app.ChangeRepriced)
	}
	if !before.StartTS.Equal(after.StartTS) && !replaced {
		c.Reasons = append(c.Reasons, app.ChangeShifted)
	}
	return c
}
