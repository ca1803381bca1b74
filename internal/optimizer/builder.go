package optimizer

import (
	"sort"
	"time"

	"github.com/alexanderramin/itinera/internal/domain"
)

type BuildInput struct {
	Trip     *domain.Trip
	Existing []*domain.Segment
	Choices  []SlotChoice
	// Quotes resolves a chosen candidate ID to its quote.
	Quotes map[string]*domain.Quote
	Status domain.SegmentStatus
	Now    time.Time
	NewID  func() string
}

// Binding attaches a quote to a segment.
type Binding struct {
	QuoteID   string
	SegmentID string
}

type BuildResult struct {
	Creates   []*domain.Segment
	Updates   []*domain.Segment
	Unchanged []*domain.Segment
	// Rebind lists segments whose attached quote changes; their old quotes go
	// back to the pool before Bindings are applied.
	Rebind   []string
	Bindings []Binding
}

// Changed returns the ids of created and updated segments.
func (r BuildResult) Changed() []string {
	ids := make([]string, 0, len(r.Creates)+len(r.Updates))
	for _, s := range r.Creates {
		ids = append(ids, s.ID)
	}
	for _, s := range r.Updates {
		ids = append(ids, s.ID)
	}
	return ids
}

// BuildItinerary maps reconciled choices onto segments. A choice already
// attached to an unlocked segment of its category keeps that segment; the
// rest reuse the remaining unlocked segments in start order, and only then
// are new segments created. Locked segments are never touched and a segment
// whose content would not change is reported as unchanged.
func BuildItinerary(in BuildInput) BuildResult {
	var res BuildResult

	byCategory := make(map[domain.Category][]*domain.Segment)
	for _, s := range in.Existing {
		if s.Locked {
			continue
		}
		byCategory[s.Category] = append(byCategory[s.Category], s)
	}
	for _, segs := range byCategory {
		sort.SliceStable(segs, func(i, j int) bool {
			if !segs[i].StartTS.Equal(segs[j].StartTS) {
				return segs[i].StartTS.Before(segs[j].StartTS)
			}
			return segs[i].ID < segs[j].ID
		})
	}

	attachedTo := make(map[string]string)
	for id, q := range in.Quotes {
		if segID, ok := q.Binding.SegmentID(); ok {
			attachedTo[id] = segID
		}
	}

	used := make(map[string]bool)
	assigned := make([]*domain.Segment, len(in.Choices))

	// Keep choices on the segment they are already attached to.
	for i, ch := range in.Choices {
		segID, ok := attachedTo[ch.Choice.ID]
		if !ok {
			continue
		}
		for _, s := range byCategory[ch.Category] {
			if s.ID == segID && !used[s.ID] {
				assigned[i] = s
				used[s.ID] = true
				break
			}
		}
	}
	for i, ch := range in.Choices {
		if assigned[i] != nil {
			continue
		}
		for _, s := range byCategory[ch.Category] {
			if !used[s.ID] {
				assigned[i] = s
				used[s.ID] = true
				break
			}
		}
	}

	for i, ch := range in.Choices {
		q, ok := in.Quotes[ch.Choice.ID]
		if !ok {
			continue
		}
		existing := assigned[i]
		if existing == nil {
			seg := newSegment(in, q)
			res.Creates = append(res.Creates, seg)
			res.Bindings = append(res.Bindings, Binding{QuoteID: q.ID, SegmentID: seg.ID})
			continue
		}

		next := *existing
		next.ApplyQuote(*q)
		next.StartTS, next.EndTS = PlaceSegment(q.Category, in.Trip.StartDate, in.Trip.EndDate, q.DurationMin)

		alreadyBound := attachedTo[q.ID] == existing.ID
		if next.SameContent(*existing) {
			res.Unchanged = append(res.Unchanged, existing)
		} else {
			next.Status = in.Status
			next.UpdatedAt = in.Now
			res.Updates = append(res.Updates, &next)
		}
		if !alreadyBound {
			res.Rebind = append(res.Rebind, existing.ID)
			res.Bindings = append(res.Bindings, Binding{QuoteID: q.ID, SegmentID: existing.ID})
		}
	}
	return res
}

func newSegment(in BuildInput, q *domain.Quote) *domain.Segment {
	seg := &domain.Segment{
		ID:        in.NewID(),
		TripID:    in.Trip.ID,
		Category:  q.Category,
		Status:    in.Status,
		CreatedAt: in.Now,
		UpdatedAt: in.Now,
	}
	seg.ApplyQuote(*q)
	seg.StartTS, seg.EndTS = PlaceSegment(q.Category, in.Trip.StartDate, in.Trip.EndDate, q.DurationMin)
	return seg
}
