package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// ConfigureOutput sets the global color profile for w. Plain output (pipes,
// NO_COLOR, --plain) drops every escape sequence.
func ConfigureOutput(w io.Writer, plain bool) termenv.Profile {
	profile := termenv.Ascii
	if !plain && !termenv.EnvNoColor() {
		profile = termenv.NewOutput(w).ColorProfile()
	}
	lipgloss.SetColorProfile(profile)
	return profile
}

// TripStatusPill returns a colored indicator such as "● Optimized".
func TripStatusPill(status domain.TripStatus) string {
	switch status {
	case domain.TripDraft:
		return StyleYellow.Render("○ Draft")
	case domain.TripOptimized:
		return StyleGreen.Render("● Optimized")
	case domain.TripConfirmed:
		return StyleBlue.Render("✔ Confirmed")
	default:
		return StyleDim.Render(string(status))
	}
}

// SegmentStatusPill returns a colored indicator for how a segment got its offer.
func SegmentStatusPill(status domain.SegmentStatus) string {
	switch status {
	case domain.SegmentPlanned:
		return StyleGreen.Render("● planned")
	case domain.SegmentReplanned:
		return StyleYellow.Render("↻ replanned")
	case domain.SegmentManual:
		return StylePurple.Render("✎ manual")
	default:
		return StyleDim.Render(string(status))
	}
}

func SeverityPill(s domain.Severity) string {
	switch s {
	case domain.SeverityCritical:
		return StyleRed.Render("▲ critical")
	case domain.SeverityWarning:
		return StyleYellow.Render("● warning")
	default:
		return StyleDim.Render("○ info")
	}
}

// CategoryBadge returns a capitalized, color-coded category label.
func CategoryBadge(c domain.Category) string {
	if c == "" {
		return StyleDim.Render("--")
	}
	label := strings.ToUpper(string(c)[:1]) + string(c)[1:]
	switch c {
	case domain.CategoryTransport:
		return StyleBlue.Render(label)
	case domain.CategoryStay:
		return StylePurple.Render(label)
	case domain.CategoryActivity:
		return StyleGreen.Render(label)
	default:
		return StyleDim.Render(label)
	}
}

// LockIcon marks locked segments.
func LockIcon(locked bool) string {
	if locked {
		return StyleYellow.Render("🔒")
	}
	return Dim("·")
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
