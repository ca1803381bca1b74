package optimizer

import (
	"time"

	"github.com/alexanderramin/itinera/internal/app"
	"github.com/alexanderramin/itinera/internal/domain"
)

type ReselectInput struct {
	Trip *domain.Trip
	// Impacted segments carry refreshed prices already; they must be unlocked.
	Impacted []*domain.Segment
	// Fixed is every other segment of the trip, locked or not.
	Fixed []*domain.Segment
	// Pool holds unattached quotes, refreshed prices applied.
	Pool     []*domain.Quote
	Caps     []domain.BudgetCap
	Weights  Weights
	Margin   float64
	ShiftMin int
}

// SegmentOutcome is the new state for one impacted segment.
type SegmentOutcome struct {
	Segment *domain.Segment
	// Quote is the replacement; nil when the incumbent offer is kept.
	Quote *domain.Quote
	Issue *app.SegmentIssue
}

type ReselectResult struct {
	Outcomes  []SegmentOutcome
	Reconcile ReconcileResult
}

// Reselect re-runs selection and reconciliation over just the impacted
// segments. Each impacted segment competes as an incumbent carrying the
// improvement margin, so it is only replaced when a pool quote clearly wins.
func Reselect(in ReselectInput) ReselectResult {
	impactedBy := make(map[domain.Category][]*domain.Segment)
	for _, s := range sortedSegments(in.Impacted) {
		impactedBy[s.Category] = append(impactedBy[s.Category], s)
	}

	quotes := make(map[string]*domain.Quote, len(in.Pool))
	var selections []CategorySelection
	var fixedTotal float64
	for _, s := range in.Fixed {
		fixedTotal += s.Price
	}

	for _, cat := range domain.OptimizedCategories {
		segs := impactedBy[cat]
		if len(segs) == 0 {
			continue
		}
		var candidates []Candidate
		for _, s := range segs {
			candidates = append(candidates, Candidate{
				ID:           s.ID,
				Price:        s.Price,
				DurationMin:  s.DurationMin,
				ComfortScore: s.ComfortScore,
				Seq:          -1,
				Incumbent:    s.ID,
				Bonus:        in.Margin,
			})
		}
		for _, q := range in.Pool {
			if q.Category != cat {
				continue
			}
			quotes[q.ID] = q
			candidates = append(candidates, CandidateFromQuote(q, nil))
		}

		var locked LockedContribution
		for _, s := range in.Fixed {
			if s.Category == cat {
				locked.Price += s.Price
				locked.DurationMin += s.DurationMin
				locked.Count++
			}
		}
		selections = append(selections, SelectCategory(CategoryInput{
			Category:   cat,
			Candidates: candidates,
			Cap:        domain.CapFor(in.Caps, cat),
			Locked:     locked,
			Slots:      locked.Count + len(segs),
			Weights:    in.Weights,
		}))
	}

	rec := Reconcile(ReconcileInput{
		TotalBudget: in.Trip.TotalBudget,
		FixedTotal:  fixedTotal,
		Categories:  selections,
	})

	res := ReselectResult{Reconcile: rec}
	for _, cat := range domain.OptimizedCategories {
		segs := impactedBy[cat]
		if len(segs) == 0 {
			continue
		}
		res.Outcomes = append(res.Outcomes, assignOutcomes(in, segs, rec.Choices, cat, quotes)...)
	}
	return res
}

func assignOutcomes(in ReselectInput, segs []*domain.Segment, choices []SlotChoice, cat domain.Category, quotes map[string]*domain.Quote) []SegmentOutcome {
	kept := make(map[string]bool)
	var replacements []*domain.Quote
	for _, ch := range choices {
		if ch.Category != cat {
			continue
		}
		if ch.Choice.Incumbent != "" {
			kept[ch.Choice.Incumbent] = true
			continue
		}
		if q, ok := quotes[ch.Choice.ID]; ok {
			replacements = append(replacements, q)
		}
	}

	shift := time.Duration(in.ShiftMin) * time.Minute
	var out []SegmentOutcome
	for _, s := range segs {
		next := *s
		next.StartTS, next.EndTS = ShiftSegment(cat, s.StartTS, s.EndTS, in.Trip.EndDate, shift)

		switch {
		case kept[s.ID]:
			out = append(out, SegmentOutcome{Segment: &next})
		case len(replacements) > 0:
			q := replacements[0]
			replacements = replacements[1:]
			next.ApplyQuote(*q)
			start, end := PlaceSegment(cat, in.Trip.StartDate, in.Trip.EndDate, q.DurationMin)
			next.StartTS, next.EndTS = ShiftSegment(cat, start, end, in.Trip.EndDate, shift)
			out = append(out, SegmentOutcome{Segment: &next, Quote: q})
		default:
			out = append(out, SegmentOutcome{
				Segment: &next,
				Issue: &app.SegmentIssue{
					SegmentID: s.ID,
					Code:      string(app.ErrNoFeasibleCandidate),
					Message:   "no candidate fits the category cap; segment kept as is",
				},
			})
		}
	}
	return out
}
