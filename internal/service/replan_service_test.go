package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/itinera/internal/app"
	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type replanFixture struct {
	*fixture
	trip      *domain.Trip
	stayQuote *domain.Quote
	poolStay  *domain.Quote
	transport *domain.Segment
	stay      *domain.Segment
	activity  *domain.Segment
}

// newReplanFixture optimizes a Goa trip and locks its transport segment.
func newReplanFixture(t *testing.T) *replanFixture {
	t.Helper()
	f := &replanFixture{fixture: newFixture(t)}
	ctx := context.Background()

	f.trip = testutil.NewTestTrip("Goa")
	f.seedTrip(t, f.trip, costHeavy(f.trip.ID))
	f.stayQuote = testutil.NewTestQuote(f.trip.ID, domain.CategoryStay, "Casa", 10000, 5760, 7)
	f.poolStay = testutil.NewTestQuote(f.trip.ID, domain.CategoryStay, "Coastal", 12000, 5760, 7)
	f.addQuotes(t,
		testutil.NewTestQuote(f.trip.ID, domain.CategoryTransport, "IndiGo", 18000, 300, 6),
		f.stayQuote, f.poolStay,
		testutil.NewTestQuote(f.trip.ID, domain.CategoryActivity, "Kayak", 3000, 180, 6),
	)

	_, err := NewOptimizeService(f.deps).Optimize(ctx, app.OptimizeRequest{TripID: f.trip.ID})
	require.NoError(t, err)

	byCat := f.segmentsByCategory(t, f.trip.ID)
	require.Len(t, byCat[domain.CategoryStay], 1)
	f.stay = byCat[domain.CategoryStay][0]
	f.activity = byCat[domain.CategoryActivity][0]
	require.Equal(t, "Casa", f.stay.Provider)

	f.transport, err = NewSegmentService(f.deps).SetLock(ctx, byCat[domain.CategoryTransport][0].ID, true)
	require.NoError(t, err)
	return f
}

func (f *replanFixture) record(t *testing.T, kind domain.EventKind, payload string) *domain.Event {
	t.Helper()
	e := &domain.Event{TripID: f.trip.ID, Kind: kind, Payload: []byte(payload), Severity: domain.SeverityWarning}
	require.NoError(t, NewTripService(f.deps).RecordEvent(context.Background(), e))
	return e
}

func TestReplan_PriceChangeReplacesStayButNotLockedTransport(t *testing.T) {
	f := newReplanFixture(t)
	ctx := context.Background()

	// The selected stay goes up 40%; the pool stay ends 20% under the new price.
	e := f.record(t, domain.EventPriceChange,
		fmt.Sprintf(`{"quotes":{%q:14000,%q:11200}}`, f.stayQuote.ID, f.poolStay.ID))

	resp, err := NewReplanService(f.deps).Replan(ctx, app.ReplanRequest{TripID: f.trip.ID, EventID: e.ID})
	require.NoError(t, err)

	assert.Equal(t, domain.EventPriceChange, resp.Kind)
	assert.Equal(t, []string{f.stay.ID}, resp.Impacted)
	require.Len(t, resp.Changed, 1)
	assert.Equal(t, f.stay.ID, resp.Changed[0].ID)
	require.Len(t, resp.Changes, 1)
	assert.Equal(t, []app.ChangeReason{app.ChangeReplaced}, resp.Changes[0].Reasons)
	assert.Equal(t, 10000.0, resp.Changes[0].PriceBefore)
	assert.Equal(t, 11200.0, resp.Changes[0].PriceAfter)
	assert.Empty(t, resp.Issues)
	assert.InDelta(t, 18000+11200+3000, resp.Budget.Total, 1e-9)

	stay, err := f.deps.Segments.GetByID(ctx, f.stay.ID)
	require.NoError(t, err)
	assert.Equal(t, "Coastal", stay.Provider)
	assert.Equal(t, 11200.0, stay.Price)
	assert.Equal(t, domain.SegmentReplanned, stay.Status)

	transport, err := f.deps.Segments.GetByID(ctx, f.transport.ID)
	require.NoError(t, err)
	assert.Equal(t, f.transport, transport, "locked transport is byte-identical")

	activity, err := f.deps.Segments.GetByID(ctx, f.activity.ID)
	require.NoError(t, err)
	assert.True(t, f.activity.SameContent(*activity))

	old, err := f.deps.Quotes.GetByID(ctx, f.stayQuote.ID)
	require.NoError(t, err)
	assert.True(t, old.Binding.IsPool(), "replaced quote goes back to the pool")
	assert.Equal(t, 14000.0, old.Price)

	replacement, err := f.deps.Quotes.GetByID(ctx, f.poolStay.ID)
	require.NoError(t, err)
	segID, _ := replacement.Binding.SegmentID()
	assert.Equal(t, f.stay.ID, segID)
}

func TestReplan_DelayShiftsLaterUnlockedSegments(t *testing.T) {
	f := newReplanFixture(t)
	ctx := context.Background()

	e := f.record(t, domain.EventDelay, fmt.Sprintf(`{"segment_id":%q,"delay_min":90}`, f.stay.ID))
	resp, err := NewReplanService(f.deps).Replan(ctx, app.ReplanRequest{TripID: f.trip.ID, EventID: e.ID})
	require.NoError(t, err)

	assert.Contains(t, resp.Impacted, f.stay.ID)
	assert.Contains(t, resp.Impacted, f.activity.ID)
	assert.NotContains(t, resp.Impacted, f.transport.ID)

	activity, err := f.deps.Segments.GetByID(ctx, f.activity.ID)
	require.NoError(t, err)
	assert.True(t, activity.StartTS.Equal(f.activity.StartTS.Add(90*time.Minute)))
	assert.Equal(t, domain.SegmentReplanned, activity.Status)

	for _, c := range resp.Changes {
		assert.Contains(t, c.Reasons, app.ChangeShifted)
	}

	transport, err := f.deps.Segments.GetByID(ctx, f.transport.ID)
	require.NoError(t, err)
	assert.Equal(t, f.transport, transport)
}

func TestReplan_DelayOnStayKeepsUnlockedTransport(t *testing.T) {
	f := newReplanFixture(t)
	ctx := context.Background()

	transportBefore, err := NewSegmentService(f.deps).SetLock(ctx, f.transport.ID, false)
	require.NoError(t, err)
	require.True(t, transportBefore.StartTS.Equal(f.stay.StartTS), "transport and stay both start on arrival")

	e := f.record(t, domain.EventDelay, fmt.Sprintf(`{"segment_id":%q,"delay_min":90}`, f.stay.ID))
	resp, err := NewReplanService(f.deps).Replan(ctx, app.ReplanRequest{TripID: f.trip.ID, EventID: e.ID})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{f.stay.ID, f.activity.ID}, resp.Impacted)

	transport, err := f.deps.Segments.GetByID(ctx, f.transport.ID)
	require.NoError(t, err)
	assert.Equal(t, transportBefore, transport)

	stay, err := f.deps.Segments.GetByID(ctx, f.stay.ID)
	require.NoError(t, err)
	assert.True(t, stay.StartTS.Equal(f.stay.StartTS.Add(90*time.Minute)))
	assert.True(t, stay.EndTS.Equal(f.trip.EndDate), "checkout stays on the trip end date")
}

func TestReplan_NoEffectLeavesEverything(t *testing.T) {
	f := newReplanFixture(t)
	ctx := context.Background()

	e := f.record(t, domain.EventWeather, `{"from":"2030-01-01","to":"2030-01-02"}`)
	resp, err := NewReplanService(f.deps).Replan(ctx, app.ReplanRequest{TripID: f.trip.ID, EventID: e.ID})
	require.NoError(t, err)

	assert.Empty(t, resp.Impacted)
	assert.Empty(t, resp.Changed)
	assert.Len(t, resp.Unchanged, 3)
}

func TestReplan_RejectsEventFromAnotherTrip(t *testing.T) {
	f := newReplanFixture(t)
	ctx := context.Background()

	other := testutil.NewTestTrip("Kochi")
	f.seedTrip(t, other, costHeavy(other.ID))
	e := testutil.NewTestEvent(other.ID, domain.EventDelay, `{"segment_id":"x","delay_min":10}`)
	require.NoError(t, f.deps.Events.Create(ctx, e))

	_, err := NewReplanService(f.deps).Replan(ctx, app.ReplanRequest{TripID: f.trip.ID, EventID: e.ID})
	var replanErr *app.ReplanError
	require.ErrorAs(t, err, &replanErr)
	assert.Equal(t, app.ReplanErrTripMismatch, replanErr.Code)

	_, err = NewReplanService(f.deps).Replan(ctx, app.ReplanRequest{TripID: f.trip.ID, EventID: "missing"})
	require.ErrorAs(t, err, &replanErr)
	assert.Equal(t, app.ReplanErrInvalidEvent, replanErr.Code)
}

func TestReplan_RollbackKeepsQuotePrices(t *testing.T) {
	f := newReplanFixture(t)
	ctx := context.Background()

	e := f.record(t, domain.EventPriceChange,
		fmt.Sprintf(`{"quotes":{%q:14000,%q:11200}}`, f.stayQuote.ID, f.poolStay.ID))

	// ExecContext #1-#2 refresh quote prices, #3 detaches the stay.
	f.deps.UoW = &testutil.FailOnNthExecUoW{DB: f.db, FailOn: 3, Err: fmt.Errorf("injected detach failure")}
	_, err := NewReplanService(f.deps).Replan(ctx, app.ReplanRequest{TripID: f.trip.ID, EventID: e.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected detach failure")

	q, err := f.deps.Quotes.GetByID(ctx, f.stayQuote.ID)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, q.Price)

	stay, err := f.deps.Segments.GetByID(ctx, f.stay.ID)
	require.NoError(t, err)
	assert.Equal(t, f.stay, stay)
}
