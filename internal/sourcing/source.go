// Package sourcing supplies candidate quotes for a trip from catalogs and
// language-model generation.
package sourcing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/itinera/internal/domain"
	"golang.org/x/sync/errgroup"
)

// ErrNoCandidates is returned by a source that has nothing for a category.
var ErrNoCandidates = errors.New("no candidates")

// TripContext is what a source needs to know about the trip.
type TripContext struct {
	TripID      string
	Origin      string
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	Nights      int
	Currency    string
	TotalBudget float64
	// Caps holds the per-category caps that are set.
	Caps map[domain.Category]float64
}

// ContextFor builds a TripContext from a trip and its caps.
func ContextFor(t *domain.Trip, caps []domain.BudgetCap) TripContext {
	tc := TripContext{
		TripID:      t.ID,
		Origin:      t.Origin,
		Destination: t.Destination,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		Nights:      t.Nights(),
		Currency:    t.Currency,
		TotalBudget: t.TotalBudget,
		Caps:        make(map[domain.Category]float64, len(caps)),
	}
	for _, c := range caps {
		tc.Caps[c.Category] = c.Cap
	}
	return tc
}

// BudgetHint is the amount a source should aim under for a category: its cap
// when set, the whole trip budget otherwise.
func (tc TripContext) BudgetHint(c domain.Category) float64 {
	if v, ok := tc.Caps[c]; ok {
		return v
	}
	return tc.TotalBudget
}

// QuoteSource fetches candidate quotes. Returned quotes carry offer fields
// only; identity, trip and binding are assigned by the caller.
type QuoteSource interface {
	FetchCandidates(ctx context.Context, tc TripContext, category domain.Category) ([]domain.Quote, error)
}

// Result is the outcome of fetching one category.
type Result struct {
	Category domain.Category
	Quotes   []domain.Quote
	Err      error
}

// FetchAll fetches every category concurrently. A failing category never
// cancels the others; its error is reported in its own Result. Results come
// back in the order of categories.
func FetchAll(ctx context.Context, src QuoteSource, tc TripContext, categories []domain.Category) []Result {
	results := make([]Result, len(categories))
	var g errgroup.Group
	for i, c := range categories {
		i, c := i, c
		g.Go(func() error {
			quotes, err := src.FetchCandidates(ctx, tc, c)
			if err == nil && len(quotes) == 0 {
				err = ErrNoCandidates
			}
			results[i] = Result{Category: c, Quotes: quotes, Err: err}
			return nil
		})
	}
	// Every goroutine records its error in results and returns nil, so Wait
	// never fails and one failing category cannot cancel the others.
	_ = g.Wait()
	return results
}

// Chain tries each source in order and returns the first non-empty answer.
type Chain []QuoteSource

func (c Chain) FetchCandidates(ctx context.Context, tc TripContext, category domain.Category) ([]domain.Quote, error) {
	var errs []error
	for _, src := range c {
		quotes, err := src.FetchCandidates(ctx, tc, category)
		if err == nil && len(quotes) > 0 {
			return quotes, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return nil, ErrNoCandidates
	}
	return nil, fmt.Errorf("all sources failed for %s: %w", category, errors.Join(errs...))
}

// StaticSource serves fixed quotes per category. Err entries force a failure.
type StaticSource struct {
	Quotes map[domain.Category][]domain.Quote
	Err    map[domain.Category]error
}

func (s StaticSource) FetchCandidates(_ context.Context, _ TripContext, category domain.Category) ([]domain.Quote, error) {
	if err := s.Err[category]; err != nil {
		return nil, err
	}
	quotes := s.Quotes[category]
	out := make([]domain.Quote, len(quotes))
	copy(out, quotes)
	return out, nil
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
