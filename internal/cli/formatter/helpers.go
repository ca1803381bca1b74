package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	content = strings.TrimRight(content, "\n")
	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// FormatMoney renders an amount with thousands separators and the currency
// symbol, e.g. "₹18,000" or "CHF 1,250.50". Fractions are shown only when
// present.
func FormatMoney(amount float64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	amount = math.Round(amount*100) / 100

	var digits string
	if amount == math.Trunc(amount) {
		digits = humanize.Comma(int64(amount))
	} else {
		digits = humanize.CommafWithDigits(amount, 2)
		if i := strings.IndexByte(digits, '.'); i >= 0 && len(digits)-i == 2 {
			digits += "0"
		}
	}

	if sym, ok := currencySymbols[strings.ToUpper(currency)]; ok {
		return sign + sym + digits
	}
	if currency == "" {
		return sign + digits
	}
	return sign + strings.ToUpper(currency) + " " + digits
}

// FormatDelta renders a signed money difference, green when it saves money.
func FormatDelta(delta float64, currency string) string {
	switch {
	case math.Abs(delta) < 0.005:
		return Dim("±0")
	case delta < 0:
		return StyleGreen.Render(FormatMoney(delta, currency))
	default:
		return StyleRed.Render("+" + FormatMoney(delta, currency))
	}
}

// FormatDate renders a calendar day such as "Jul 1, 2025".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "--"
	}
	return t.Format("Jan 2, 2006")
}

// FormatDateTime renders a timestamp such as "Jul 1 09:30".
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return "--"
	}
	return t.Format("Jan 2 15:04")
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// FormatMinutes converts raw minutes into human-friendly format.
func FormatMinutes(min int) string {
	if min <= 0 {
		return "0m"
	}
	d := min / (24 * 60)
	h := (min % (24 * 60)) / 60
	m := min % 60
	var parts []string
	if d > 0 {
		parts = append(parts, fmt.Sprintf("%dd", d))
	}
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	return strings.Join(parts, " ")
}

// FormatComfort renders a 0-10 comfort score with one decimal.
func FormatComfort(score float64) string {
	return fmt.Sprintf("%.1f/10", score)
}
