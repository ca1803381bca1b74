package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/itinera/internal/app"
	"github.com/alexanderramin/itinera/internal/domain"
)

const budgetBarWidth = 12

// FormatTripList renders trips as a table.
func FormatTripList(trips []*domain.Trip) string {
	if len(trips) == 0 {
		return Dim("No trips yet. Create one with `itinera trip create`.") + "\n"
	}
	t := NewTable("ID", "TRIP", "DATES", "BUDGET", "STATUS").AlignRight(3)
	for _, tr := range trips {
		t.Row(
			TruncID(tr.ID),
			Bold(tr.Title),
			fmt.Sprintf("%s → %s", FormatDate(tr.StartDate), FormatDate(tr.EndDate)),
			FormatMoney(tr.TotalBudget, tr.Currency),
			TripStatusPill(tr.Status),
		)
	}
	return t.Render()
}

// FormatTripHeader renders the one-paragraph trip identity block.
func FormatTripHeader(tr *domain.Trip) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", Bold(tr.Title), TripStatusPill(tr.Status))
	fmt.Fprintf(&b, "  %s → %s\n", tr.Origin, tr.Destination)
	fmt.Fprintf(&b, "  %s → %s %s\n", FormatDate(tr.StartDate), FormatDate(tr.EndDate),
		Dim(fmt.Sprintf("(%d nights)", tr.Nights())))
	fmt.Fprintf(&b, "  Budget %s  %s\n", Bold(FormatMoney(tr.TotalBudget, tr.Currency)), Dim(tr.ID))
	return b.String()
}

// FormatPreferences renders the three weights on one line.
func FormatPreferences(p *domain.Preferences) string {
	if p == nil {
		return Dim("no preferences")
	}
	return fmt.Sprintf("cost %s  time %s  comfort %s",
		Bold(fmt.Sprintf("%.2f", p.WeightCost)),
		Bold(fmt.Sprintf("%.2f", p.WeightTime)),
		Bold(fmt.Sprintf("%.2f", p.WeightComfort)))
}

// FormatSegments renders an itinerary table ordered as given.
func FormatSegments(segments []*domain.Segment, currency string) string {
	if len(segments) == 0 {
		return Dim("  No segments planned.") + "\n"
	}
	t := NewTable("ID", "CATEGORY", "OFFER", "START", "DURATION", "PRICE", "COMFORT", "", "STATUS").AlignRight(4, 5)
	for _, s := range segments {
		t.Row(
			TruncID(s.ID),
			CategoryBadge(s.Category),
			segmentLabel(s),
			FormatDateTime(s.StartTS),
			FormatMinutes(s.DurationMin),
			FormatMoney(s.Price, domain.CoalesceStr(s.Currency, currency)),
			FormatComfort(s.ComfortScore),
			LockIcon(s.Locked),
			SegmentStatusPill(s.Status),
		)
	}
	return t.Render()
}

func segmentLabel(s *domain.Segment) string {
	if s.Provider == "" || s.Provider == s.Title {
		return s.Title
	}
	return s.Title + Dim(" · "+s.Provider)
}

// FormatSummary renders the trip detail view: header, itinerary, spend per
// category and totals.
func FormatSummary(sum *app.TripSummary) string {
	tr := sum.Trip
	var b strings.Builder

	b.WriteString(FormatTripHeader(tr))
	b.WriteString("  Weights " + FormatPreferences(sum.Preferences) + "\n\n")

	b.WriteString(Header("Itinerary") + "\n")
	b.WriteString(FormatSegments(sum.Segments, tr.Currency))
	b.WriteString("\n")

	b.WriteString(Header("Spend") + "\n")
	t := NewTable("CATEGORY", "SPENT", "CAP", "USAGE").AlignRight(1, 2)
	for _, s := range sum.Spend {
		capText := Dim("--")
		bar := Dim("uncapped")
		if s.Cap != nil {
			capText = FormatMoney(*s.Cap, tr.Currency)
			bar = RenderBudgetBar(s.Spent, *s.Cap, budgetBarWidth)
		}
		spent := FormatMoney(s.Spent, tr.Currency)
		if s.Over() {
			spent = StyleRed.Render(spent)
		}
		t.Row(CategoryBadge(s.Category), spent, capText, bar)
	}
	b.WriteString(t.Render())
	b.WriteString("\n")

	b.WriteString(FormatTotals(sum.Totals, tr.Currency))
	b.WriteString(fmt.Sprintf("  Budget   %s\n", RenderBudgetBar(sum.Totals.Price, tr.TotalBudget, budgetBarWidth)))
	if sum.OverBudget {
		b.WriteString(StyleRed.Render(fmt.Sprintf("  Over budget by %s", FormatMoney(-sum.Remaining, tr.Currency))) + "\n")
	} else {
		b.WriteString(fmt.Sprintf("  Remaining %s\n", StyleGreen.Render(FormatMoney(sum.Remaining, tr.Currency))))
	}

	return RenderBox("Trip", b.String())
}

// FormatTotals renders price, time and comfort aggregates.
func FormatTotals(t app.ItineraryTotals, currency string) string {
	return fmt.Sprintf("  Total    %s  %s  %s\n",
		Bold(FormatMoney(t.Price, currency)),
		Dim(FormatMinutes(t.DurationMin)),
		Dim("avg comfort "+FormatComfort(t.AvgComfort)))
}
