package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/repository"
	"github.com/alexanderramin/itinera/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLock_Toggles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	trip := testutil.NewTestTrip("Goa")
	f.seedTrip(t, trip, costHeavy(trip.ID))
	seg := testutil.NewTestSegment(trip.ID, domain.CategoryStay, "Casa")
	f.addSegments(t, seg)

	svc := NewSegmentService(f.deps)
	locked, err := svc.SetLock(ctx, seg.ID, true)
	require.NoError(t, err)
	assert.True(t, locked.Locked)

	unlocked, err := svc.SetLock(ctx, seg.ID, false)
	require.NoError(t, err)
	assert.False(t, unlocked.Locked)

	_, err = svc.SetLock(ctx, "missing", true)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListAlternatives_CheapestPoolQuotes(t *testing.T) {
	f := newReplanFixture(t)
	ctx := context.Background()
	f.addQuotes(t,
		testutil.NewTestQuote(f.trip.ID, domain.CategoryStay, "Palace", 30000, 5760, 10),
		testutil.NewTestQuote(f.trip.ID, domain.CategoryStay, "Hostel", 3000, 5760, 3),
		testutil.NewTestQuote(f.trip.ID, domain.CategoryStay, "Villa", 20000, 5760, 9),
		testutil.NewTestQuote(f.trip.ID, domain.CategoryTransport, "Bus", 1500, 1200, 3),
	)

	alts, err := NewSegmentService(f.deps).ListAlternatives(ctx, f.stay.ID)
	require.NoError(t, err)
	require.Len(t, alts, AlternativesLimit)

	var providers []string
	for _, q := range alts {
		providers = append(providers, q.Source)
		assert.True(t, q.Binding.IsPool())
	}
	assert.Equal(t, []string{"Hostel", "Coastal", "Villa"}, providers)
}

func TestReplace_AppliesQuoteEvenWhenLocked(t *testing.T) {
	f := newReplanFixture(t)
	ctx := context.Background()
	svc := NewSegmentService(f.deps)

	_, err := svc.SetLock(ctx, f.stay.ID, true)
	require.NoError(t, err)

	seg, err := svc.Replace(ctx, f.stay.ID, f.poolStay.ID)
	require.NoError(t, err)
	assert.Equal(t, "Coastal", seg.Provider)
	assert.Equal(t, 12000.0, seg.Price)
	assert.Equal(t, domain.SegmentManual, seg.Status)
	assert.True(t, seg.Locked, "replace keeps the lock")
	assert.True(t, seg.StartTS.Equal(testutil.TripStart))
	assert.True(t, seg.EndTS.Equal(f.trip.EndDate))

	stored, err := f.deps.Segments.GetByID(ctx, f.stay.ID)
	require.NoError(t, err)
	assert.Equal(t, "Coastal", stored.Provider)

	prev, err := f.deps.Quotes.GetByID(ctx, f.stayQuote.ID)
	require.NoError(t, err)
	assert.True(t, prev.Binding.IsPool())

	bound, err := f.deps.Quotes.GetByID(ctx, f.poolStay.ID)
	require.NoError(t, err)
	segID, _ := bound.Binding.SegmentID()
	assert.Equal(t, f.stay.ID, segID)
}

func TestReplace_RejectsForeignQuote(t *testing.T) {
	f := newReplanFixture(t)
	ctx := context.Background()
	svc := NewSegmentService(f.deps)

	bus := testutil.NewTestQuote(f.trip.ID, domain.CategoryTransport, "Bus", 1500, 1200, 3)
	f.addQuotes(t, bus)
	_, err := svc.Replace(ctx, f.stay.ID, bus.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound, "category mismatch")

	other := testutil.NewTestTrip("Kochi")
	f.seedTrip(t, other, costHeavy(other.ID))
	foreign := testutil.NewTestQuote(other.ID, domain.CategoryStay, "Elsewhere", 100, 5760, 5)
	f.addQuotes(t, foreign)
	_, err = svc.Replace(ctx, f.stay.ID, foreign.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound, "trip mismatch")

	_, err = svc.Replace(ctx, f.stay.ID, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	stored, err := f.deps.Segments.GetByID(ctx, f.stay.ID)
	require.NoError(t, err)
	assert.Equal(t, f.stay, stored)
}

func TestReplace_AlreadyAttachedIsNoop(t *testing.T) {
	f := newReplanFixture(t)
	seg, err := NewSegmentService(f.deps).Replace(context.Background(), f.stay.ID, f.stayQuote.ID)
	require.NoError(t, err)
	assert.Equal(t, f.stay, seg)
}
