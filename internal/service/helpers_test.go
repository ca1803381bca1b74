package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db   *sql.DB
	deps Deps
	reg  *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	reg := prometheus.NewRegistry()
	deps := NewSQLiteDeps(database)
	deps.Metrics = MustNewMetrics(reg)
	return &fixture{db: database, deps: deps, reg: reg}
}

// seedTrip stores a trip with its preferences and caps.
func (f *fixture) seedTrip(t *testing.T, trip *domain.Trip, prefs *domain.Preferences, caps ...*domain.BudgetCap) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.deps.Trips.Create(ctx, trip))
	require.NoError(t, f.deps.Prefs.Upsert(ctx, prefs))
	for _, c := range caps {
		require.NoError(t, f.deps.Caps.Create(ctx, c))
	}
}

func (f *fixture) addQuotes(t *testing.T, quotes ...*domain.Quote) {
	t.Helper()
	for _, q := range quotes {
		require.NoError(t, f.deps.Quotes.Create(context.Background(), q))
	}
}

func (f *fixture) addSegments(t *testing.T, segments ...*domain.Segment) {
	t.Helper()
	for _, s := range segments {
		require.NoError(t, f.deps.Segments.Create(context.Background(), s))
	}
}

func (f *fixture) segmentsByCategory(t *testing.T, tripID string) map[domain.Category][]*domain.Segment {
	t.Helper()
	segments, err := f.deps.Segments.ListByTrip(context.Background(), tripID)
	require.NoError(t, err)
	out := make(map[domain.Category][]*domain.Segment)
	for _, s := range segments {
		out[s.Category] = append(out[s.Category], s)
	}
	return out
}

func costHeavy(tripID string) *domain.Preferences {
	return testutil.NewTestPreferences(tripID, 0.6, 0.2, 0.2)
}
