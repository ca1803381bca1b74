package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quoteTestSetup(t *testing.T) (*SQLiteQuoteRepo, *SQLiteSegmentRepo, *domain.Trip) {
	t.Helper()
	database := testutil.NewTestDB(t)
	trip := testutil.NewTestTrip("Goa")
	require.NoError(t, NewSQLiteTripRepo(database).Create(context.Background(), trip))
	return NewSQLiteQuoteRepo(database), NewSQLiteSegmentRepo(database), trip
}

func TestQuoteRepo_CreateAssignsSeq(t *testing.T) {
	repo, _, trip := quoteTestSetup(t)
	ctx := context.Background()

	q1 := testutil.NewTestQuote(trip.ID, domain.CategoryTransport, "IndiGo", 18000, 300, 6,
		testutil.WithAttributes(map[string]any{"stops": float64(1)}))
	q2 := testutil.NewTestQuote(trip.ID, domain.CategoryTransport, "Vistara", 25000, 180, 8)
	require.NoError(t, repo.Create(ctx, q1))
	require.NoError(t, repo.Create(ctx, q2))
	assert.Equal(t, 1, q1.Seq)
	assert.Equal(t, 2, q2.Seq)

	fetched, err := repo.GetByID(ctx, q1.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Binding.IsPool())
	assert.Equal(t, 18000.0, fetched.Price)
	assert.Equal(t, 300, fetched.DurationMin)
	assert.Equal(t, map[string]any{"stops": float64(1)}, fetched.Attributes)
}

func TestQuoteRepo_GetByID_NotFound(t *testing.T) {
	repo, _, _ := quoteTestSetup(t)
	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuoteRepo_ListPool_CheapestFirstUnattachedOnly(t *testing.T) {
	repo, segments, trip := quoteTestSetup(t)
	ctx := context.Background()

	seg := testutil.NewTestSegment(trip.ID, domain.CategoryStay, "Taj")
	require.NoError(t, segments.Create(ctx, seg))

	prices := []float64{9000, 4000, 7000, 5000}
	for i, p := range prices {
		require.NoError(t, repo.Create(ctx, testutil.NewTestQuote(trip.ID, domain.CategoryStay, "Hotel", p, 5760, float64(5+i))))
	}
	attached := testutil.NewTestQuote(trip.ID, domain.CategoryStay, "Taj", 1000, 5760, 9, testutil.WithAttachedTo(seg.ID))
	require.NoError(t, repo.Create(ctx, attached))
	require.NoError(t, repo.Create(ctx, testutil.NewTestQuote(trip.ID, domain.CategoryActivity, "Tour", 10, 60, 5)))

	pool, err := repo.ListPool(ctx, trip.ID, domain.CategoryStay, 3)
	require.NoError(t, err)
	require.Len(t, pool, 3)
	assert.Equal(t, 4000.0, pool[0].Price)
	assert.Equal(t, 5000.0, pool[1].Price)
	assert.Equal(t, 7000.0, pool[2].Price)

	all, err := repo.ListPool(ctx, trip.ID, domain.CategoryStay, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4, "limit 0 means unlimited")
}

func TestQuoteRepo_AttachDetach(t *testing.T) {
	repo, segments, trip := quoteTestSetup(t)
	ctx := context.Background()

	seg := testutil.NewTestSegment(trip.ID, domain.CategoryTransport, "Flight")
	require.NoError(t, segments.Create(ctx, seg))
	q := testutil.NewTestQuote(trip.ID, domain.CategoryTransport, "IndiGo", 18000, 300, 6)
	require.NoError(t, repo.Create(ctx, q))

	require.NoError(t, repo.Attach(ctx, q.ID, seg.ID))
	fetched, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	id, ok := fetched.Binding.SegmentID()
	assert.True(t, ok)
	assert.Equal(t, seg.ID, id)

	require.NoError(t, repo.Detach(ctx, seg.ID))
	fetched, err = repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Binding.IsPool())

	assert.ErrorIs(t, repo.Attach(ctx, "missing", seg.ID), ErrNotFound)
}

func TestQuoteRepo_CountAndUpdatePrice(t *testing.T) {
	repo, _, trip := quoteTestSetup(t)
	ctx := context.Background()

	q := testutil.NewTestQuote(trip.ID, domain.CategoryStay, "Hotel", 5000, 5760, 7)
	require.NoError(t, repo.Create(ctx, q))
	require.NoError(t, repo.Create(ctx, testutil.NewTestQuote(trip.ID, domain.CategoryStay, "Hostel", 1500, 5760, 4)))
	require.NoError(t, repo.Create(ctx, testutil.NewTestQuote(trip.ID, domain.CategoryTransport, "Bus", 900, 900, 3)))

	counts, err := repo.CountByCategory(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[domain.CategoryStay])
	assert.Equal(t, 1, counts[domain.CategoryTransport])
	assert.Equal(t, 0, counts[domain.CategoryActivity])

	require.NoError(t, repo.UpdatePrice(ctx, q.ID, 4000))
	fetched, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 4000.0, fetched.Price)
}
