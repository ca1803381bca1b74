package optimizer

import (
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/itinera/internal/app"
	"github.com/alexanderramin/itinera/internal/domain"
)

// DefaultImprovementMargin is how much utility a pool quote must gain over a
// segment before a price or weather event marks it impacted.
const DefaultImprovementMargin = 0.05

type ImpactInput struct {
	Event    *domain.Event
	Trip     *domain.Trip
	Segments []*domain.Segment
	Quotes   []*domain.Quote
	Weights  Weights
	Margin   float64
}

type ImpactResult struct {
	// Impacted holds unlocked segment ids in start order.
	Impacted []string
	// QuotePrices and SegmentPrices hold refreshed prices that differ from
	// the stored ones. Locked segments never appear in SegmentPrices.
	QuotePrices   map[string]float64
	SegmentPrices map[string]float64
	ShiftMin      int
	Issues        []app.SegmentIssue
}

func (r ImpactResult) IsImpacted(segmentID string) bool {
	for _, id := range r.Impacted {
		if id == segmentID {
			return true
		}
	}
	return false
}

// AnalyzeImpact computes the minimal set of unlocked segments an event
// invalidates. It only fails on a malformed payload; problems with individual
// segments are returned as issues.
func AnalyzeImpact(in ImpactInput) (ImpactResult, error) {
	res := ImpactResult{
		QuotePrices:   map[string]float64{},
		SegmentPrices: map[string]float64{},
	}
	payload, err := in.Event.DecodePayload()
	if err != nil {
		return res, err
	}

	ordered := sortedSegments(in.Segments)
	impacted := make(map[string]bool)

	switch p := payload.(type) {
	case *domain.DelayPayload:
		analyzeDelay(p, ordered, impacted, &res)
	case *domain.WeatherPayload:
		if err := analyzeWeather(in, p, ordered, impacted); err != nil {
			return res, err
		}
	case *domain.PricePayload:
		analyzePrice(in, p, ordered, impacted, &res)
	}

	for _, s := range ordered {
		if impacted[s.ID] {
			res.Impacted = append(res.Impacted, s.ID)
		}
	}
	return res, nil
}

// analyzeDelay marks the delayed segment and every unlocked segment after it
// in itinerary order. Segments sharing a start follow category order, so a
// delayed stay never drags the arrival transport along.
func analyzeDelay(p *domain.DelayPayload, ordered []*domain.Segment, impacted map[string]bool, res *ImpactResult) {
	rootIdx := -1
	for i, s := range ordered {
		if s.ID == p.SegmentID {
			rootIdx = i
			break
		}
	}
	if rootIdx < 0 {
		res.Issues = append(res.Issues, app.SegmentIssue{
			SegmentID: p.SegmentID,
			Code:      "UNKNOWN_SEGMENT",
			Message:   fmt.Sprintf("delayed segment %s is not part of this trip", p.SegmentID),
		})
		return
	}
	root := ordered[rootIdx]
	if root.Locked {
		res.Issues = append(res.Issues, app.SegmentIssue{
			SegmentID: root.ID,
			Code:      "LOCKED",
			Message:   "delayed segment is locked; only later unlocked segments are shifted",
		})
	}
	res.ShiftMin = p.DelayMin
	for _, s := range ordered[rootIdx:] {
		if !s.Locked {
			impacted[s.ID] = true
		}
	}
}

func analyzeWeather(in ImpactInput, p *domain.WeatherPayload, ordered []*domain.Segment, impacted map[string]bool) error {
	loc := time.UTC
	if in.Trip != nil {
		loc = in.Trip.StartDate.Location()
	}
	from, to, err := p.Window(loc)
	if err != nil {
		return err
	}
	for _, s := range ordered {
		if s.Locked || s.Category != domain.CategoryActivity {
			continue
		}
		if !s.StartTS.Before(from) && s.StartTS.Before(to) {
			impacted[s.ID] = true
		}
	}
	return nil
}

func analyzePrice(in ImpactInput, p *domain.PricePayload, ordered []*domain.Segment, impacted map[string]bool, res *ImpactResult) {
	inScope := func(c domain.Category) bool { return p.Category == "" || p.Category == c }
	factorApplies := func(c domain.Category, currency string) bool {
		return p.Factor > 0 && inScope(c) && (p.Currency == "" || p.Currency == currency)
	}

	attachedQuote := make(map[string]string)
	for _, q := range in.Quotes {
		newPrice, ok := p.Quotes[q.ID]
		if !ok && factorApplies(q.Category, q.Currency) {
			newPrice, ok = q.Price*p.Factor, true
		}
		if ok && newPrice != q.Price {
			res.QuotePrices[q.ID] = newPrice
		}
		if segID, bound := q.Binding.SegmentID(); bound {
			attachedQuote[segID] = q.ID
		}
	}

	for _, s := range ordered {
		if s.Locked {
			continue
		}
		newPrice, ok := p.Segments[s.ID]
		if !ok {
			if qid, bound := attachedQuote[s.ID]; bound {
				newPrice, ok = p.Quotes[qid]
			}
		}
		if !ok && factorApplies(s.Category, s.Currency) {
			newPrice, ok = s.Price*p.Factor, true
		}
		if ok && newPrice != s.Price {
			res.SegmentPrices[s.ID] = newPrice
			impacted[s.ID] = true
		}
	}

	for _, s := range ordered {
		if s.Locked || impacted[s.ID] || !inScope(s.Category) {
			continue
		}
		if beatenByPool(s, res.priceOf(s), in.Quotes, res.QuotePrices, in.Weights, in.Margin) {
			impacted[s.ID] = true
		}
	}
}

func (r ImpactResult) priceOf(s *domain.Segment) float64 {
	if p, ok := r.SegmentPrices[s.ID]; ok {
		return p
	}
	return s.Price
}

// beatenByPool reports whether an unattached quote of the segment's category
// has utility more than margin above the segment's own offer.
func beatenByPool(s *domain.Segment, price float64, quotes []*domain.Quote, refreshed map[string]float64, w Weights, margin float64) bool {
	candidates := []Candidate{{
		ID:           s.ID,
		Price:        price,
		DurationMin:  s.DurationMin,
		ComfortScore: s.ComfortScore,
		Incumbent:    s.ID,
	}}
	for _, q := range quotes {
		if q.Category != s.Category || !q.Binding.IsPool() {
			continue
		}
		candidates = append(candidates, CandidateFromQuote(q, refreshed))
	}
	if len(candidates) < 2 {
		return false
	}
	scored := Score(candidates, w)
	incumbent := scored[0].Utility
	for _, c := range scored[1:] {
		if c.Utility > incumbent+margin+utilityEpsilon {
			return true
		}
	}
	return false
}

// CandidateFromQuote builds a candidate, using a refreshed price when present.
func CandidateFromQuote(q *domain.Quote, refreshed map[string]float64) Candidate {
	price := q.Price
	if p, ok := refreshed[q.ID]; ok {
		price = p
	}
	return Candidate{
		ID:           q.ID,
		Price:        price,
		DurationMin:  q.DurationMin,
		ComfortScore: q.ComfortScore,
		Seq:          q.Seq,
	}
}

func sortedSegments(segments []*domain.Segment) []*domain.Segment {
	out := make([]*domain.Segment, len(segments))
	copy(out, segments)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartTS.Equal(out[j].StartTS) {
			return out[i].StartTS.Before(out[j].StartTS)
		}
		if oi, oj := out[i].Category.Order(), out[j].Category.Order(); oi != oj {
			return oi < oj
		}
		return out[i].ID < out[j].ID
	})
	return out
}
