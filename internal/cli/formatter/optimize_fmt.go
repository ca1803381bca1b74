package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/itinera/internal/app"
)

// FormatOptimize renders the result of an optimize run.
func FormatOptimize(resp *app.OptimizeResponse, currency string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", TripStatusPill(resp.Status), Dim(resp.TripID))
	if len(resp.Seeded) > 0 {
		names := make([]string, len(resp.Seeded))
		for i, c := range resp.Seeded {
			names[i] = string(c)
		}
		b.WriteString(Dim("  Sourced new quotes for "+strings.Join(names, ", ")) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(FormatSegments(resp.Segments, currency))
	b.WriteString("\n")

	switch n := len(resp.Changed); n {
	case 0:
		b.WriteString(Dim("  No segments changed.") + "\n")
	case 1:
		b.WriteString(StyleGreen.Render("  1 segment changed.") + "\n")
	default:
		b.WriteString(StyleGreen.Render(fmt.Sprintf("  %d segments changed.", n)) + "\n")
	}

	b.WriteString(FormatBudgetOutcome(resp.Budget, currency))
	b.WriteString(FormatIssues(resp.Infeasible))

	return RenderBox("Optimize", b.String())
}

// FormatBudgetOutcome renders the reconciler result.
func FormatBudgetOutcome(o app.BudgetOutcome, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  Total    %s of %s  %s\n",
		Bold(FormatMoney(o.Total, currency)),
		FormatMoney(o.TotalBudget, currency),
		RenderBudgetBar(o.Total, o.TotalBudget, budgetBarWidth))
	if o.FixedTotal > 0 {
		fmt.Fprintf(&b, "  %s\n", Dim("Locked   "+FormatMoney(o.FixedTotal, currency)))
	}
	if o.Downgrades > 0 {
		fmt.Fprintf(&b, "  %s\n", StyleYellow.Render(fmt.Sprintf("Downgraded %d selection(s) to fit the budget", o.Downgrades)))
	}
	if o.Infeasible != nil {
		fmt.Fprintf(&b, "  %s\n", StyleRed.Render(fmt.Sprintf("Over budget by %s even after every downgrade",
			FormatMoney(o.Infeasible.Deficit, currency))))
	}
	return b.String()
}

// FormatIssues lists per-category failures; empty when there are none.
func FormatIssues(issues []app.CategoryIssue) string {
	if len(issues) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n")
	for _, is := range issues {
		fmt.Fprintf(&b, "  %s %s %s\n", StyleRed.Render("✖"), CategoryBadge(is.Category), Dim(string(is.Code)))
		fmt.Fprintf(&b, "    %s\n", Dim(is.Message))
	}
	return b.String()
}

// FormatPreview renders current versus proposed totals for a weight change.
func FormatPreview(resp *app.PreviewResponse, currency string) string {
	var b strings.Builder

	t := NewTable("", "CURRENT", "PROPOSED", "CHANGE").AlignRight(1, 2, 3)
	t.Row("Price",
		FormatMoney(resp.Current.Price, currency),
		FormatMoney(resp.Proposed.Price, currency),
		FormatDelta(resp.Proposed.Price-resp.Current.Price, currency))
	t.Row("Time",
		FormatMinutes(resp.Current.DurationMin),
		FormatMinutes(resp.Proposed.DurationMin),
		minutesDelta(resp.Proposed.DurationMin-resp.Current.DurationMin))
	t.Row("Comfort",
		FormatComfort(resp.Current.AvgComfort),
		FormatComfort(resp.Proposed.AvgComfort),
		comfortDelta(resp.Proposed.AvgComfort-resp.Current.AvgComfort))
	t.Row("Segments",
		fmt.Sprintf("%d", resp.Current.Segments),
		fmt.Sprintf("%d", resp.Proposed.Segments),
		"")
	b.WriteString(t.Render())
	b.WriteString("\n")

	b.WriteString(Header("Proposed itinerary") + "\n")
	b.WriteString(FormatSegments(resp.Segments, currency))
	b.WriteString(FormatIssues(resp.Infeasible))
	b.WriteString("\n" + Dim("  Nothing was saved. Adjust weights with `itinera trip prefs` to apply.") + "\n")

	return RenderBox("Preview", b.String())
}

func minutesDelta(d int) string {
	switch {
	case d == 0:
		return Dim("±0")
	case d < 0:
		return StyleGreen.Render("-" + FormatMinutes(-d))
	default:
		return StyleRed.Render("+" + FormatMinutes(d))
	}
}

func comfortDelta(d float64) string {
	switch {
	case d > -0.05 && d < 0.05:
		return Dim("±0")
	case d > 0:
		return StyleGreen.Render(fmt.Sprintf("+%.1f", d))
	default:
		return StyleRed.Render(fmt.Sprintf("%.1f", d))
	}
}
