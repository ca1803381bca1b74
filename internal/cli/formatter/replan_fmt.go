package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/itinera/internal/app"
	"github.com/alexanderramin/itinera/internal/domain"
)

// FormatReplan renders what a disruption changed.
func FormatReplan(resp *app.ReplanResponse, currency string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Event %s %s\n", Bold(string(resp.Kind)), Dim(resp.EventID))
	fmt.Fprintf(&b, "  %d impacted, %d changed, %d unchanged\n\n",
		len(resp.Impacted), len(resp.Changed), len(resp.Unchanged))

	if len(resp.Changes) == 0 {
		b.WriteString(Dim("  Nothing to change.") + "\n")
	} else {
		b.WriteString(Header("Changes") + "\n")
		t := NewTable("ID", "CATEGORY", "BEFORE", "AFTER", "PRICE", "WHY").AlignRight(4)
		for _, c := range resp.Changes {
			t.Row(
				TruncID(c.SegmentID),
				CategoryBadge(c.Category),
				c.TitleBefore,
				Bold(c.TitleAfter),
				FormatMoney(c.PriceAfter, currency)+" "+FormatDelta(c.PriceAfter-c.PriceBefore, currency),
				formatReasons(c.Reasons),
			)
		}
		b.WriteString(t.Render())
	}

	if len(resp.Issues) > 0 {
		b.WriteString("\n")
		for _, is := range resp.Issues {
			fmt.Fprintf(&b, "  %s %s %s\n", StyleRed.Render("✖"), TruncID(is.SegmentID), Dim(is.Code))
			fmt.Fprintf(&b, "    %s\n", Dim(is.Message))
		}
	}

	b.WriteString("\n")
	b.WriteString(FormatBudgetOutcome(resp.Budget, currency))

	return RenderBox("Replan", b.String())
}

func formatReasons(reasons []app.ChangeReason) string {
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		switch r {
		case app.ChangeReplaced:
			parts[i] = StylePurple.Render(string(r))
		case app.ChangeShifted:
			parts[i] = StyleBlue.Render(string(r))
		default:
			parts[i] = StyleYellow.Render(string(r))
		}
	}
	return strings.Join(parts, ", ")
}

// FormatEventList renders recorded events, newest last.
func FormatEventList(events []*domain.Event) string {
	if len(events) == 0 {
		return Dim("No events recorded.") + "\n"
	}
	t := NewTable("ID", "KIND", "SEVERITY", "RECORDED", "PAYLOAD")
	for _, e := range events {
		t.Row(
			TruncID(e.ID),
			Bold(string(e.Kind)),
			SeverityPill(e.Severity),
			FormatDateTime(e.CreatedAt),
			Dim(truncate(string(e.Payload), 48)),
		)
	}
	return t.Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
