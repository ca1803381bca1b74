package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/itinera/internal/app"
	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/repository"
	"github.com/alexanderramin/itinera/internal/sourcing"
	"github.com/alexanderramin/itinera/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goaRequest() app.CreateTripRequest {
	return app.CreateTripRequest{
		Origin:      "Delhi",
		Destination: "Goa",
		StartDate:   "2025-07-01",
		EndDate:     "2025-07-05",
		TotalBudget: 50000,
		Caps: map[domain.Category]float64{
			domain.CategoryTransport: 20000,
			domain.CategoryStay:      20000,
			domain.CategoryActivity:  10000,
		},
	}
}

func TestCreateTrip_StoresTripCapsAndBalancedWeights(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var logs bytes.Buffer
	svc := NewTripService(f.deps, NewLogUseCaseObserver(&logs))

	trip, err := svc.Create(ctx, goaRequest())
	require.NoError(t, err)
	assert.Equal(t, "Delhi to Goa", trip.Title)
	assert.Equal(t, domain.DefaultCurrency, trip.Currency)
	assert.Equal(t, domain.TripDraft, trip.Status)
	assert.Equal(t, 4, trip.Nights())

	caps, err := f.deps.Caps.ListByTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Len(t, caps, 3)

	prefs, err := f.deps.Prefs.Get(ctx, trip.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, prefs.Sum(), 1e-9)

	assert.Contains(t, logs.String(), "use_case=create-trip")
	assert.Contains(t, logs.String(), "success=true")
}

func TestCreateTrip_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*app.CreateTripRequest)
	}{
		{"bad start date", func(r *app.CreateTripRequest) { r.StartDate = "01/07/2025" }},
		{"end before start", func(r *app.CreateTripRequest) { r.EndDate = "2025-06-30" }},
		{"no budget", func(r *app.CreateTripRequest) { r.TotalBudget = 0 }},
		{"caps over budget", func(r *app.CreateTripRequest) { r.Caps[domain.CategoryMisc] = 15000 }},
		{"negative cap", func(r *app.CreateTripRequest) { r.Caps[domain.CategoryStay] = -1 }},
		{"unknown cap", func(r *app.CreateTripRequest) { r.Caps["food"] = 10 }},
		{"bad weights", func(r *app.CreateTripRequest) {
			r.Preferences = &domain.Preferences{WeightCost: 0.7, WeightTime: 0.7}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := goaRequest()
			tt.mutate(&req)
			_, err := NewTripService(f.deps).Create(context.Background(), req)
			assert.ErrorIs(t, err, domain.ErrValidation)

			trips, err := f.deps.Trips.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, trips)
		})
	}
}

func TestAdjustPreference_Rebalances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewTripService(f.deps)
	trip, err := svc.Create(ctx, goaRequest())
	require.NoError(t, err)

	prefs, err := svc.AdjustPreference(ctx, trip.ID, domain.WeightCost, 0.6)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, prefs.WeightCost, 1e-9)
	assert.InDelta(t, 0.2, prefs.WeightTime, 1e-9)
	assert.InDelta(t, 0.2, prefs.WeightComfort, 1e-9)

	stored, err := f.deps.Prefs.Get(ctx, trip.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, stored.WeightCost, 1e-9)

	_, err = svc.AdjustPreference(ctx, trip.ID, domain.WeightTime, 1.5)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.AdjustPreference(ctx, "missing", domain.WeightTime, 0.5)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSummary_SpendPerCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip := testutil.NewTestTrip("Goa", testutil.WithBudget(20000))
	f.seedTrip(t, trip, costHeavy(trip.ID), testutil.NewTestCap(trip.ID, domain.CategoryStay, 8000))
	f.addSegments(t,
		testutil.NewTestSegment(trip.ID, domain.CategoryTransport, "Flight", testutil.WithSegmentPrice(9000)),
		testutil.NewTestSegment(trip.ID, domain.CategoryStay, "Casa", testutil.WithSegmentPrice(12000)),
	)

	sum, err := NewTripService(f.deps).Summary(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 21000.0, sum.Totals.Price)
	assert.Equal(t, -1000.0, sum.Remaining)
	assert.True(t, sum.OverBudget)
	require.Len(t, sum.Spend, 2)
	assert.Equal(t, domain.CategoryTransport, sum.Spend[0].Category)
	assert.False(t, sum.Spend[0].Over())
	assert.Equal(t, domain.CategoryStay, sum.Spend[1].Category)
	assert.True(t, sum.Spend[1].Over())
}

func TestRecordEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip := testutil.NewTestTrip("Goa")
	f.seedTrip(t, trip, costHeavy(trip.ID))
	svc := NewTripService(f.deps)

	e := &domain.Event{TripID: trip.ID, Kind: domain.EventFXChange, Payload: []byte(`{"currency":"INR","factor":1.1}`)}
	require.NoError(t, svc.RecordEvent(ctx, e))
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, domain.SeverityInfo, e.Severity)

	events, err := svc.ListEvents(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, e.ID, events[0].ID)

	bad := &domain.Event{TripID: trip.ID, Kind: domain.EventDelay, Payload: []byte(`{"delay_min":5}`)}
	assert.ErrorIs(t, svc.RecordEvent(ctx, bad), domain.ErrValidation)

	orphan := &domain.Event{TripID: "missing", Kind: domain.EventWeather, Payload: []byte(`{"from":"2025-07-02"}`)}
	assert.ErrorIs(t, svc.RecordEvent(ctx, orphan), repository.ErrNotFound)
}

func TestDeleteTrip_Cascades(t *testing.T) {
	f := newReplanFixture(t)
	ctx := context.Background()
	require.NoError(t, NewTripService(f.deps).Delete(ctx, f.trip.ID))

	_, err := f.deps.Trips.GetByID(ctx, f.trip.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.deps.Segments.GetByID(ctx, f.stay.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTripLocker_SerializesSameTrip(t *testing.T) {
	l := NewTripLocker()
	unlock := l.Lock("a")

	acquired := make(chan struct{})
	released := make(chan struct{})
	go func() {
		release := l.Lock("a")
		close(acquired)
		release()
		close(released)
	}()

	otherDone := make(chan struct{})
	go func() {
		release := l.Lock("b")
		release()
		close(otherDone)
	}()
	<-otherDone

	select {
	case <-acquired:
		t.Fatal("second lock on the same trip acquired while held")
	default:
	}
	unlock()
	<-acquired
	<-released

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.locks)
}

type fakeSuggester struct {
	quotes    []domain.Quote
	err       error
	interests []string
	budget    float64
	tc        sourcing.TripContext
}

func (f *fakeSuggester) SuggestActivities(_ context.Context, tc sourcing.TripContext, interests []string, budget float64) ([]domain.Quote, error) {
	f.tc, f.interests, f.budget = tc, interests, budget
	return f.quotes, f.err
}

func TestSuggestActivities_StoresPoolQuotesForOptimize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip := testutil.NewTestTrip("Hampi")
	f.seedTrip(t, trip, costHeavy(trip.ID), testutil.NewTestCap(trip.ID, domain.CategoryActivity, 4000))
	suggester := &fakeSuggester{quotes: []domain.Quote{{
		Title:        "Boulder sunrise hike",
		Source:       "suggestion",
		Price:        1200,
		DurationMin:  240,
		ComfortScore: 5,
		Attributes:   map[string]any{"kind": "adventure"},
	}}}
	f.deps.Suggester = suggester

	quotes, err := NewTripService(f.deps).SuggestActivities(ctx, app.SuggestActivitiesRequest{
		TripID:    trip.ID,
		Interests: []string{" hiking ", "", "temples"},
	})

	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, []string{"hiking", "temples"}, suggester.interests)
	assert.Equal(t, 4000.0, suggester.budget, "budget defaults to the activity cap")
	assert.Equal(t, "Hampi", suggester.tc.Destination)

	q := quotes[0]
	assert.NotEmpty(t, q.ID)
	assert.Equal(t, trip.ID, q.TripID)
	assert.Equal(t, domain.CategoryActivity, q.Category)
	assert.True(t, q.Binding.IsPool())
	assert.Equal(t, domain.DefaultCurrency, q.Currency)

	pool, err := f.deps.Quotes.ListPool(ctx, trip.ID, domain.CategoryActivity, 0)
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, "adventure", pool[0].Attributes["kind"])

	resp, err := NewOptimizeService(f.deps).Optimize(ctx, app.OptimizeRequest{TripID: trip.ID})
	require.NoError(t, err)
	require.Len(t, resp.Segments, 1)
	assert.Equal(t, "Boulder sunrise hike", resp.Segments[0].Title)
}

func TestSuggestActivities_ExplicitBudget(t *testing.T) {
	f := newFixture(t)
	trip := testutil.NewTestTrip("Goa")
	f.seedTrip(t, trip, costHeavy(trip.ID))
	suggester := &fakeSuggester{quotes: []domain.Quote{{Title: "Spice farm", Price: 900, ComfortScore: 7}}}
	f.deps.Suggester = suggester

	_, err := NewTripService(f.deps).SuggestActivities(context.Background(), app.SuggestActivitiesRequest{TripID: trip.ID, Budget: 1500})
	require.NoError(t, err)
	assert.Equal(t, 1500.0, suggester.budget)
	assert.Empty(t, suggester.interests)
}

func TestSuggestActivities_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip := testutil.NewTestTrip("Goa")
	f.seedTrip(t, trip, costHeavy(trip.ID))

	_, err := NewTripService(f.deps).SuggestActivities(ctx, app.SuggestActivitiesRequest{TripID: trip.ID})
	var unavailable *app.SourcingUnavailableError
	require.ErrorAs(t, err, &unavailable, "no suggester configured")
	assert.Equal(t, domain.CategoryActivity, unavailable.Category)

	f.deps.Suggester = &fakeSuggester{err: errors.New("model offline")}
	svc := NewTripService(f.deps)
	_, err = svc.SuggestActivities(ctx, app.SuggestActivitiesRequest{TripID: trip.ID})
	require.ErrorAs(t, err, &unavailable)
	assert.EqualError(t, unavailable.Err, "model offline")

	f.deps.Suggester = &fakeSuggester{}
	_, err = NewTripService(f.deps).SuggestActivities(ctx, app.SuggestActivitiesRequest{TripID: trip.ID})
	assert.ErrorIs(t, err, sourcing.ErrNoCandidates)

	_, err = svc.SuggestActivities(ctx, app.SuggestActivitiesRequest{TripID: trip.ID, Budget: -1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.SuggestActivities(ctx, app.SuggestActivitiesRequest{TripID: "missing"})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	pool, err := f.deps.Quotes.ListPool(ctx, trip.ID, domain.CategoryActivity, 0)
	require.NoError(t, err)
	assert.Empty(t, pool, "failed suggestions store nothing")
}
