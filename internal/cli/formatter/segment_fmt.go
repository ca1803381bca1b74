package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/itinera/internal/advice"
	"github.com/alexanderramin/itinera/internal/domain"
)

// FormatSegment renders a single segment as a detail card.
func FormatSegment(s *domain.Segment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s\n", CategoryBadge(s.Category), Bold(s.Title), SegmentStatusPill(s.Status))
	if s.Provider != "" && s.Provider != s.Title {
		fmt.Fprintf(&b, "  Provider  %s\n", s.Provider)
	}
	fmt.Fprintf(&b, "  When      %s → %s %s\n", FormatDateTime(s.StartTS), FormatDateTime(s.EndTS),
		Dim("("+FormatMinutes(s.DurationMin)+")"))
	fmt.Fprintf(&b, "  Price     %s\n", Bold(FormatMoney(s.Price, s.Currency)))
	fmt.Fprintf(&b, "  Comfort   %s\n", FormatComfort(s.ComfortScore))
	if s.Locked {
		fmt.Fprintf(&b, "  Locked    %s\n", StyleYellow.Render("yes, optimize and replan leave it alone"))
	} else {
		fmt.Fprintf(&b, "  Locked    %s\n", Dim("no"))
	}
	fmt.Fprintf(&b, "  %s\n", Dim(s.ID))
	return RenderBox("Segment", b.String())
}

// FormatAlternatives renders pool quotes that could replace a segment.
func FormatAlternatives(seg *domain.Segment, quotes []*domain.Quote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current  %s  %s\n\n", Bold(seg.Title), FormatMoney(seg.Price, seg.Currency))
	if len(quotes) == 0 {
		b.WriteString(Dim("  No alternatives in the pool.") + "\n")
		return RenderBox("Alternatives", b.String())
	}
	t := NewTable("QUOTE", "OFFER", "PRICE", "DIFF", "DURATION", "COMFORT").AlignRight(2, 3, 4)
	for _, q := range quotes {
		label := domain.CoalesceStr(q.Title, q.Source)
		if q.Title != "" && q.Source != "" && q.Source != q.Title {
			label += Dim(" · " + q.Source)
		}
		t.Row(
			Dim(q.ID),
			label,
			FormatMoney(q.Price, q.Currency),
			FormatDelta(q.Price-seg.Price, q.Currency),
			FormatMinutes(q.DurationMin),
			FormatComfort(q.ComfortScore),
		)
	}
	b.WriteString(t.Render())
	b.WriteString("\n" + Dim("  Apply one with `itinera segment replace <segment> <quote>`.") + "\n")
	return RenderBox("Alternatives", b.String())
}

// FormatSuggestions renders activity ideas that were added to the pool.
func FormatSuggestions(quotes []*domain.Quote) string {
	var b strings.Builder
	t := NewTable("QUOTE", "ACTIVITY", "KIND", "PRICE", "DURATION", "COMFORT").AlignRight(3, 4)
	for _, q := range quotes {
		kind, _ := q.Attributes["kind"].(string)
		t.Row(
			Dim(q.ID),
			q.Title,
			kind,
			FormatMoney(q.Price, q.Currency),
			FormatMinutes(q.DurationMin),
			FormatComfort(q.ComfortScore),
		)
	}
	b.WriteString(t.Render())
	for _, q := range quotes {
		if desc, _ := q.Attributes["description"].(string); desc != "" {
			fmt.Fprintf(&b, "\n  %s  %s", Bold(q.Title), Dim(desc))
		}
	}
	fmt.Fprintf(&b, "\n\n%s\n", Dim(fmt.Sprintf("  Added %d to the activity pool. Run `itinera optimize` to consider them.", len(quotes))))
	return RenderBox("Suggestions", b.String())
}

// FormatExplanation renders trade-off bullets.
func FormatExplanation(bullets []string) string {
	if len(bullets) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(Header("Why this plan") + "\n")
	for _, line := range bullets {
		fmt.Fprintf(&b, "  %s %s\n", StyleGreen.Render("•"), line)
	}
	return b.String()
}

// FormatWeatherTips renders the destination outlook and packing tips.
func FormatWeatherTips(w advice.WeatherTips) string {
	var b strings.Builder
	b.WriteString(Header("Weather & tips") + "\n")
	weather := w.Weather
	if w.Fallback {
		weather = Dim(weather)
	}
	fmt.Fprintf(&b, "  %s\n", weather)
	for _, tip := range w.Tips {
		fmt.Fprintf(&b, "  %s %s\n", StyleBlue.Render("›"), tip)
	}
	return b.String()
}
