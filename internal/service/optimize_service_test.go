package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/itinera/internal/app"
	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/sourcing"
	"github.com/alexanderramin/itinera/internal/testutil"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimize_PicksCheapTransportUnderCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trip := testutil.NewTestTrip("Goa")
	f.seedTrip(t, trip, costHeavy(trip.ID),
		testutil.NewTestCap(trip.ID, domain.CategoryTransport, 20000),
		testutil.NewTestCap(trip.ID, domain.CategoryStay, 20000),
		testutil.NewTestCap(trip.ID, domain.CategoryActivity, 10000),
	)
	economy := testutil.NewTestQuote(trip.ID, domain.CategoryTransport, "IndiGo", 18000, 300, 6)
	premium := testutil.NewTestQuote(trip.ID, domain.CategoryTransport, "Vistara", 25000, 180, 8)
	f.addQuotes(t,
		economy, premium,
		testutil.NewTestQuote(trip.ID, domain.CategoryStay, "Casa", 12000, 5760, 7),
		testutil.NewTestQuote(trip.ID, domain.CategoryStay, "Taj", 19000, 5760, 9),
		testutil.NewTestQuote(trip.ID, domain.CategoryActivity, "Kayak", 3000, 180, 6),
		testutil.NewTestQuote(trip.ID, domain.CategoryActivity, "Cruise", 6000, 240, 8),
	)

	svc := NewOptimizeService(f.deps)
	resp, err := svc.Optimize(ctx, app.OptimizeRequest{TripID: trip.ID})
	require.NoError(t, err)

	assert.Equal(t, domain.TripOptimized, resp.Status)
	assert.Empty(t, resp.Infeasible)
	assert.Nil(t, resp.Budget.Infeasible)
	assert.LessOrEqual(t, resp.Budget.Total, 50000.0)
	require.Len(t, resp.Segments, 3)
	assert.Len(t, resp.Changed, 3)

	byCat := f.segmentsByCategory(t, trip.ID)
	require.Len(t, byCat[domain.CategoryTransport], 1)
	transport := byCat[domain.CategoryTransport][0]
	assert.Equal(t, 18000.0, transport.Price)
	assert.Equal(t, "IndiGo", transport.Provider)
	assert.Equal(t, domain.SegmentPlanned, transport.Status)
	assert.True(t, testutil.TripStart.Equal(transport.StartTS))

	q, err := f.deps.Quotes.GetByID(ctx, economy.ID)
	require.NoError(t, err)
	segID, attached := q.Binding.SegmentID()
	assert.True(t, attached)
	assert.Equal(t, transport.ID, segID)

	q, err = f.deps.Quotes.GetByID(ctx, premium.ID)
	require.NoError(t, err)
	assert.True(t, q.Binding.IsPool(), "over-cap quote stays in the pool")

	stored, err := f.deps.Trips.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TripOptimized, stored.Status)

	assert.Equal(t, 1.0, promtest.ToFloat64(f.deps.Metrics.runs.WithLabelValues("optimize", outcomeOK)))
}

func TestOptimize_ReportsInfeasibleActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trip := testutil.NewTestTrip("Goa")
	f.seedTrip(t, trip, costHeavy(trip.ID),
		testutil.NewTestCap(trip.ID, domain.CategoryActivity, 5000),
	)
	f.addQuotes(t,
		testutil.NewTestQuote(trip.ID, domain.CategoryTransport, "IndiGo", 18000, 300, 6),
		testutil.NewTestQuote(trip.ID, domain.CategoryStay, "Casa", 12000, 5760, 7),
		testutil.NewTestQuote(trip.ID, domain.CategoryActivity, "Scuba", 6500, 240, 8),
		testutil.NewTestQuote(trip.ID, domain.CategoryActivity, "Cruise", 7200, 180, 7),
	)

	resp, err := NewOptimizeService(f.deps).Optimize(ctx, app.OptimizeRequest{TripID: trip.ID})
	require.NoError(t, err)

	require.Len(t, resp.Infeasible, 1)
	assert.Equal(t, domain.CategoryActivity, resp.Infeasible[0].Category)
	assert.Equal(t, app.ErrNoFeasibleCandidate, resp.Infeasible[0].Code)

	byCat := f.segmentsByCategory(t, trip.ID)
	assert.Len(t, byCat[domain.CategoryTransport], 1)
	assert.Len(t, byCat[domain.CategoryStay], 1)
	assert.Empty(t, byCat[domain.CategoryActivity])

	assert.Equal(t, 1.0, promtest.ToFloat64(f.deps.Metrics.runs.WithLabelValues("optimize", outcomePartial)))
	assert.Equal(t, 1.0, promtest.ToFloat64(
		f.deps.Metrics.infeasible.WithLabelValues("activity", string(app.ErrNoFeasibleCandidate))))
}

func TestOptimize_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trip := testutil.NewTestTrip("Jaipur")
	f.seedTrip(t, trip, testutil.NewTestPreferences(trip.ID, 0.2, 0.4, 0.4))
	f.addQuotes(t,
		testutil.NewTestQuote(trip.ID, domain.CategoryTransport, "Rajdhani", 4000, 600, 6),
		testutil.NewTestQuote(trip.ID, domain.CategoryTransport, "AirIndia", 9000, 90, 7),
		testutil.NewTestQuote(trip.ID, domain.CategoryStay, "Haveli", 14000, 5760, 8),
		testutil.NewTestQuote(trip.ID, domain.CategoryStay, "Hostel", 4000, 5760, 4),
		testutil.NewTestQuote(trip.ID, domain.CategoryActivity, "Fort tour", 1500, 180, 7),
	)
	f.deps.Options.ActivitySlots = 1

	svc := NewOptimizeService(f.deps)
	first, err := svc.Optimize(ctx, app.OptimizeRequest{TripID: trip.ID})
	require.NoError(t, err)
	require.Len(t, first.Segments, 3)

	second, err := svc.Optimize(ctx, app.OptimizeRequest{TripID: trip.ID})
	require.NoError(t, err)
	assert.Empty(t, second.Changed)
	require.Len(t, second.Segments, len(first.Segments))
	for i := range first.Segments {
		assert.Equal(t, first.Segments[i].ID, second.Segments[i].ID)
		assert.True(t, first.Segments[i].SameContent(*second.Segments[i]))
	}
	assert.Equal(t, first.Budget.Total, second.Budget.Total)
}

func TestOptimize_LockedSegmentUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trip := testutil.NewTestTrip("Goa", testutil.WithBudget(40000))
	f.seedTrip(t, trip, costHeavy(trip.ID))
	locked := testutil.NewTestSegment(trip.ID, domain.CategoryTransport, "Chartered flight",
		testutil.WithLocked(), testutil.WithSegmentPrice(22000), testutil.WithStart(testutil.TripStart.Add(6*time.Hour), 150))
	f.addSegments(t, locked)
	f.addQuotes(t,
		testutil.NewTestQuote(trip.ID, domain.CategoryTransport, "IndiGo", 9000, 150, 6),
		testutil.NewTestQuote(trip.ID, domain.CategoryStay, "Casa", 12000, 5760, 7),
		testutil.NewTestQuote(trip.ID, domain.CategoryActivity, "Kayak", 3000, 180, 6),
	)
	before, err := f.deps.Segments.GetByID(ctx, locked.ID)
	require.NoError(t, err)

	resp, err := NewOptimizeService(f.deps).Optimize(ctx, app.OptimizeRequest{TripID: trip.ID})
	require.NoError(t, err)

	after, err := f.deps.Segments.GetByID(ctx, locked.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	byCat := f.segmentsByCategory(t, trip.ID)
	assert.Len(t, byCat[domain.CategoryTransport], 1, "a locked slot is not filled twice")
	assert.Equal(t, 22000.0, resp.Budget.FixedTotal)
	assert.InDelta(t, 37000.0, resp.Budget.Total, 1e-9)
	assert.NotContains(t, resp.Changed, locked.ID)
}

func TestOptimize_DowngradesToFitBudget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trip := testutil.NewTestTrip("Manali", testutil.WithBudget(30000))
	f.seedTrip(t, trip, testutil.NewTestPreferences(trip.ID, 0.2, 0, 0.8))
	f.addQuotes(t,
		testutil.NewTestQuote(trip.ID, domain.CategoryTransport, "Flight", 20000, 120, 9),
		testutil.NewTestQuote(trip.ID, domain.CategoryTransport, "Train", 12000, 900, 6),
		testutil.NewTestQuote(trip.ID, domain.CategoryStay, "Resort", 15000, 5760, 9),
		testutil.NewTestQuote(trip.ID, domain.CategoryStay, "Inn", 10000, 5760, 6),
	)

	resp, err := NewOptimizeService(f.deps).Optimize(ctx, app.OptimizeRequest{TripID: trip.ID})
	require.NoError(t, err)

	assert.Nil(t, resp.Budget.Infeasible)
	assert.LessOrEqual(t, resp.Budget.Total, 30000.0)
	assert.Positive(t, resp.Budget.Downgrades)
	// Activity has no quotes and no source.
	require.Len(t, resp.Infeasible, 1)
	assert.Equal(t, app.ErrSourcingUnavailable, resp.Infeasible[0].Code)
}

func TestOptimize_SeedsFromSourceAndIsolatesFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trip := testutil.NewTestTrip("Kochi")
	f.seedTrip(t, trip, costHeavy(trip.ID))
	f.deps.Source = sourcing.StaticSource{
		Quotes: map[domain.Category][]domain.Quote{
			domain.CategoryTransport: {
				{Title: "Air Kerala", Source: "catalog", Price: 7000, DurationMin: 180, ComfortScore: 6},
				{Title: "Bus", Source: "catalog", Price: 2500, DurationMin: 1500, ComfortScore: 3},
			},
			domain.CategoryStay: {
				{Title: "Backwater homestay", Source: "catalog", Price: 9000, DurationMin: 5760, ComfortScore: 7},
				{Title: "Broken", Source: "catalog", Price: -1, DurationMin: 5760, ComfortScore: 7},
			},
		},
		Err: map[domain.Category]error{
			domain.CategoryActivity: errors.New("provider timeout"),
		},
	}

	resp, err := NewOptimizeService(f.deps).Optimize(ctx, app.OptimizeRequest{TripID: trip.ID})
	require.NoError(t, err)

	assert.Equal(t, []domain.Category{domain.CategoryTransport, domain.CategoryStay}, resp.Seeded)
	require.Len(t, resp.Infeasible, 1)
	assert.Equal(t, domain.CategoryActivity, resp.Infeasible[0].Category)
	assert.Equal(t, app.ErrSourcingUnavailable, resp.Infeasible[0].Code)
	assert.Contains(t, resp.Infeasible[0].Message, "provider timeout")
	assert.Len(t, resp.Segments, 2)

	counts, err := f.deps.Quotes.CountByCategory(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[domain.CategoryTransport])
	assert.Equal(t, 1, counts[domain.CategoryStay], "invalid sourced quotes are dropped")
	assert.Zero(t, counts[domain.CategoryActivity])

	quotes, err := f.deps.Quotes.ListByTrip(ctx, trip.ID)
	require.NoError(t, err)
	for _, q := range quotes {
		assert.Equal(t, domain.DefaultCurrency, q.Currency)
	}
}

func TestOptimize_RejectsStalePreferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trip := testutil.NewTestTrip("Goa")
	f.seedTrip(t, trip, testutil.NewTestPreferences(trip.ID, 0.5, 0.2, 0.2))
	f.addQuotes(t, testutil.NewTestQuote(trip.ID, domain.CategoryTransport, "IndiGo", 18000, 300, 6))

	_, err := NewOptimizeService(f.deps).Optimize(ctx, app.OptimizeRequest{TripID: trip.ID})
	require.Error(t, err)
	var stale *app.StalePreferencesError
	require.ErrorAs(t, err, &stale)
	assert.InDelta(t, 0.9, stale.Sum, 1e-9)

	segments, err := f.deps.Segments.ListByTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestOptimize_RollbackOnAttachFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trip := testutil.NewTestTrip("Goa")
	f.seedTrip(t, trip, costHeavy(trip.ID))
	f.addQuotes(t,
		testutil.NewTestQuote(trip.ID, domain.CategoryTransport, "IndiGo", 18000, 300, 6),
		testutil.NewTestQuote(trip.ID, domain.CategoryStay, "Casa", 12000, 5760, 7),
		testutil.NewTestQuote(trip.ID, domain.CategoryActivity, "Kayak", 3000, 180, 6),
	)

	// ExecContext #1-#3 create segments, #4 is the first attach.
	f.deps.UoW = &testutil.FailOnNthExecUoW{
		DB:     f.db,
		FailOn: 4,
		Err:    fmt.Errorf("injected attach failure"),
	}
	_, err := NewOptimizeService(f.deps).Optimize(ctx, app.OptimizeRequest{TripID: trip.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected attach failure")

	segments, err := f.deps.Segments.ListByTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Empty(t, segments, "segment inserts roll back")

	stored, err := f.deps.Trips.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TripDraft, stored.Status)

	assert.Equal(t, 1.0, promtest.ToFloat64(f.deps.Metrics.runs.WithLabelValues("optimize", outcomeError)))
}

func TestOptimize_NothingPlacedKeepsDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trip := testutil.NewTestTrip("Hampi")
	f.seedTrip(t, trip, costHeavy(trip.ID))

	resp, err := NewOptimizeService(f.deps).Optimize(ctx, app.OptimizeRequest{TripID: trip.ID})
	require.NoError(t, err)
	assert.Empty(t, resp.Segments)
	assert.Len(t, resp.Infeasible, 3)
	assert.Equal(t, domain.TripDraft, resp.Status)

	stored, err := f.deps.Trips.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TripDraft, stored.Status, "empty run is retried later")

	f.addQuotes(t, testutil.NewTestQuote(trip.ID, domain.CategoryStay, "Boulder Inn", 6000, 5760, 6))
	resp, err = NewOptimizeService(f.deps).Optimize(ctx, app.OptimizeRequest{TripID: trip.ID})
	require.NoError(t, err)
	assert.Len(t, resp.Segments, 1)
	assert.Equal(t, domain.TripOptimized, resp.Status)
}

func TestOptimize_UnknownTrip(t *testing.T) {
	f := newFixture(t)
	_, err := NewOptimizeService(f.deps).Optimize(context.Background(), app.OptimizeRequest{TripID: "missing"})
	require.Error(t, err)
}

func TestPreview_DoesNotPersist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trip := testutil.NewTestTrip("Goa")
	f.seedTrip(t, trip, costHeavy(trip.ID))
	f.addQuotes(t,
		testutil.NewTestQuote(trip.ID, domain.CategoryTransport, "IndiGo", 18000, 300, 6),
		testutil.NewTestQuote(trip.ID, domain.CategoryTransport, "Vistara", 25000, 180, 9),
		testutil.NewTestQuote(trip.ID, domain.CategoryStay, "Casa", 12000, 5760, 7),
		testutil.NewTestQuote(trip.ID, domain.CategoryActivity, "Kayak", 3000, 180, 6),
	)
	svc := NewOptimizeService(f.deps)
	_, err := svc.Optimize(ctx, app.OptimizeRequest{TripID: trip.ID})
	require.NoError(t, err)

	preview, err := svc.Preview(ctx, app.PreviewRequest{TripID: trip.ID, WeightCost: 0, WeightTime: 0.5, WeightComfort: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 33000.0, preview.Current.Price)
	assert.Equal(t, 40000.0, preview.Proposed.Price)
	assert.Greater(t, preview.Proposed.AvgComfort, preview.Current.AvgComfort)

	byCat := f.segmentsByCategory(t, trip.ID)
	assert.Equal(t, 18000.0, byCat[domain.CategoryTransport][0].Price, "preview leaves stored segments alone")

	_, err = svc.Preview(ctx, app.PreviewRequest{TripID: trip.ID, WeightCost: 0.5, WeightTime: 0.5, WeightComfort: 0.5})
	var stale *app.StalePreferencesError
	require.ErrorAs(t, err, &stale)
}
