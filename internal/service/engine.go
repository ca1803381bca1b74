package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/itinera/internal/app"
	"github.com/alexanderramin/itinera/internal/db"
	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/optimizer"
	"github.com/alexanderramin/itinera/internal/repository"
	"github.com/alexanderramin/itinera/internal/sourcing"
	"github.com/google/uuid"
)

// EngineOptions tunes the optimizer. Zero fields fall back to defaults.
type EngineOptions struct {
	// ActivitySlots is how many activity segments a trip gets.
	ActivitySlots int
	// ImprovementMargin is the utility a pool quote must gain over an
	// incumbent segment before a replan swaps it out.
	ImprovementMargin float64
	WeightTolerance   float64
}

func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		ActivitySlots:     1,
		ImprovementMargin: optimizer.DefaultImprovementMargin,
		WeightTolerance:   domain.DefaultWeightTolerance,
	}
}

func (o EngineOptions) withDefaults() EngineOptions {
	d := DefaultEngineOptions()
	if o.ActivitySlots <= 0 {
		o.ActivitySlots = d.ActivitySlots
	}
	if o.ImprovementMargin <= 0 {
		o.ImprovementMargin = d.ImprovementMargin
	}
	if o.WeightTolerance <= 0 {
		o.WeightTolerance = d.WeightTolerance
	}
	return o
}

// Deps wires the engine services. Source may be nil, in which case trips
// without quotes are reported as SourcingUnavailable. A nil Suggester turns
// activity suggestions off.
type Deps struct {
	UoW      db.UnitOfWork
	Trips    repository.TripRepo
	Caps     repository.BudgetCapRepo
	Prefs    repository.PreferencesRepo
	Quotes   repository.QuoteRepo
	Segments repository.SegmentRepo
	Events   repository.EventRepo
	Source   sourcing.QuoteSource
	// Suggester proposes activities from traveler interests.
	Suggester sourcing.ActivitySuggester
	Locker    *TripLocker
	Metrics   *Metrics
	Options   EngineOptions
	// Clock and NewID are overridable for tests.
	Clock func() time.Time
	NewID func() string
}

// NewSQLiteDeps builds Deps backed by a single SQLite database.
func NewSQLiteDeps(database *sql.DB) Deps {
	return Deps{
		UoW:      db.NewSQLiteUnitOfWork(database),
		Trips:    repository.NewSQLiteTripRepo(database),
		Caps:     repository.NewSQLiteBudgetCapRepo(database),
		Prefs:    repository.NewSQLitePreferencesRepo(database),
		Quotes:   repository.NewSQLiteQuoteRepo(database),
		Segments: repository.NewSQLiteSegmentRepo(database),
		Events:   repository.NewSQLiteEventRepo(database),
		Locker:   NewTripLocker(),
		Options:  DefaultEngineOptions(),
	}
}

func (d Deps) normalized() Deps {
	if d.Locker == nil {
		d.Locker = NewTripLocker()
	}
	if d.Clock == nil {
		d.Clock = func() time.Time { return time.Now().UTC() }
	}
	if d.NewID == nil {
		d.NewID = func() string { return uuid.New().String() }
	}
	d.Options = d.Options.withDefaults()
	return d
}

func (d Deps) now(override *time.Time) time.Time {
	if override != nil {
		return *override
	}
	return d.Clock()
}

type txRepos struct {
	trips    repository.TripRepo
	caps     repository.BudgetCapRepo
	prefs    repository.PreferencesRepo
	quotes   repository.QuoteRepo
	segments repository.SegmentRepo
	events   repository.EventRepo
}

func reposFor(tx db.DBTX) txRepos {
	return txRepos{
		trips:    repository.NewSQLiteTripRepo(tx),
		caps:     repository.NewSQLiteBudgetCapRepo(tx),
		prefs:    repository.NewSQLitePreferencesRepo(tx),
		quotes:   repository.NewSQLiteQuoteRepo(tx),
		segments: repository.NewSQLiteSegmentRepo(tx),
		events:   repository.NewSQLiteEventRepo(tx),
	}
}

// tripState is everything the optimizer reads for one trip.
type tripState struct {
	trip     *domain.Trip
	prefs    *domain.Preferences
	caps     []domain.BudgetCap
	segments []*domain.Segment
	quotes   []*domain.Quote
}

func loadTripState(ctx context.Context, r txRepos, tripID string) (*tripState, error) {
	trip, err := r.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	prefs, err := r.prefs.Get(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("loading preferences: %w", err)
	}
	caps, err := r.caps.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("loading caps: %w", err)
	}
	segments, err := r.segments.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("loading segments: %w", err)
	}
	quotes, err := r.quotes.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("loading quotes: %w", err)
	}
	return &tripState{trip: trip, prefs: prefs, caps: caps, segments: segments, quotes: quotes}, nil
}

func checkPreferences(tripID string, p domain.Preferences, tol float64) error {
	if err := p.Validate(tol); err != nil {
		return &app.StalePreferencesError{
			TripID:    tripID,
			Sum:       p.Sum(),
			Tolerance: tol,
			Reason:    err.Error(),
		}
	}
	return nil
}

type plan struct {
	selections []optimizer.CategorySelection
	reconcile  optimizer.ReconcileResult
	quotes     map[string]*domain.Quote
	locked     []*domain.Segment
}

// planItinerary selects and reconciles candidates for every optimized
// category. Candidates are pool quotes plus quotes attached to unlocked
// segments; locked segments count as fixed spend.
func planItinerary(st *tripState, w optimizer.Weights, opts EngineOptions) plan {
	p := plan{quotes: make(map[string]*domain.Quote)}

	unlocked := make(map[string]bool)
	lockedBy := make(map[domain.Category]optimizer.LockedContribution)
	var fixedTotal float64
	for _, s := range st.segments {
		if !s.Locked {
			unlocked[s.ID] = true
			continue
		}
		p.locked = append(p.locked, s)
		lc := lockedBy[s.Category]
		lc.Price += s.Price
		lc.DurationMin += s.DurationMin
		lc.Count++
		lockedBy[s.Category] = lc
		fixedTotal += s.Price
	}

	candidates := make(map[domain.Category][]optimizer.Candidate)
	for _, q := range st.quotes {
		if segID, ok := q.Binding.SegmentID(); ok && !unlocked[segID] {
			continue
		}
		p.quotes[q.ID] = q
		candidates[q.Category] = append(candidates[q.Category], optimizer.CandidateFromQuote(q, nil))
	}

	for _, c := range domain.OptimizedCategories {
		p.selections = append(p.selections, optimizer.SelectCategory(optimizer.CategoryInput{
			Category:   c,
			Candidates: candidates[c],
			Cap:        domain.CapFor(st.caps, c),
			Locked:     lockedBy[c],
			Slots:      slotsFor(c, opts),
			Weights:    w,
		}))
	}

	p.reconcile = optimizer.Reconcile(optimizer.ReconcileInput{
		TotalBudget: st.trip.TotalBudget,
		FixedTotal:  fixedTotal,
		Categories:  p.selections,
	})
	return p
}

func slotsFor(c domain.Category, opts EngineOptions) int {
	if c == domain.CategoryActivity {
		return opts.ActivitySlots
	}
	return 1
}

// issues merges sourcing failures and selection failures per category in
// canonical order. A sourcing failure hides the empty-pool failure it causes.
func (p plan) issues(sourced map[domain.Category]error) []app.CategoryIssue {
	failed := make(map[domain.Category]*app.NoFeasibleCandidateError)
	for _, f := range p.reconcile.Failures {
		failed[f.Category] = f
	}
	var out []app.CategoryIssue
	for _, c := range domain.OptimizedCategories {
		if err, ok := sourced[c]; ok {
			out = append(out, app.IssueFromError(c, err))
			continue
		}
		if f, ok := failed[c]; ok {
			out = append(out, app.IssueFromError(c, f))
		}
	}
	return out
}

func budgetOutcome(r optimizer.ReconcileResult) app.BudgetOutcome {
	return app.BudgetOutcome{
		TotalBudget: r.TotalBudget,
		Total:       r.Total,
		FixedTotal:  r.FixedTotal,
		Downgrades:  r.Downgrades,
		Infeasible:  r.Err,
	}
}

func recordInfeasible(m *Metrics, issues []app.CategoryIssue, budget app.BudgetOutcome) {
	for _, is := range issues {
		m.IncInfeasible(string(is.Category), string(is.Code))
	}
	if budget.Infeasible != nil {
		m.IncInfeasible("all", string(app.ErrBudgetInfeasible))
	}
}
