package advice

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/itinera/internal/domain"
)

const (
	weatherUnavailable  = "Weather information unavailable"
	weatherNotAvailable = "Weather information not available"
)

var defaultPackingTips = []string{"Pack appropriate clothing", "Check local customs", "Stay hydrated"}

// FallbackWeatherTips is returned when the model cannot be reached.
func FallbackWeatherTips() WeatherTips {
	return WeatherTips{
		Weather:  weatherUnavailable,
		Tips:     []string{"Check weather forecast before departure"},
		Fallback: true,
	}
}

// DeterministicExplain builds trade-off lines straight from the itinerary.
func DeterministicExplain(in ExplainInput) []string {
	if len(in.Segments) == 0 {
		return []string{"No segments have been selected yet; run optimize first."}
	}
	currency := domain.CoalesceStr(in.Currency, domain.DefaultCurrency)
	p := in.Preferences

	lines := []string{fmt.Sprintf(
		"Priorities: cost %.0f%%, time %.0f%%, comfort %.0f%%; %s.",
		p.WeightCost*100, p.WeightTime*100, p.WeightComfort*100, dominantFocus(p),
	)}

	var total float64
	for _, s := range in.Segments {
		total += s.Price
		line := fmt.Sprintf("%s: %s at %s %.0f, %s, comfort %.0f/10",
			strings.ToUpper(string(s.Category[:1]))+string(s.Category[1:]),
			domain.CoalesceStr(s.Title, s.Provider), currency, s.Price, formatMinutes(s.DurationMin), s.ComfortScore)
		if s.Locked {
			line += " (locked by you)"
		}
		lines = append(lines, line+".")
	}
	lines = append(lines, fmt.Sprintf("Itinerary total: %s %.0f across %d segment(s).", currency, total, len(in.Segments)))
	return lines
}

func dominantFocus(p domain.Preferences) string {
	switch {
	case p.WeightCost >= p.WeightTime && p.WeightCost >= p.WeightComfort:
		return "cheaper options were favored even when they take longer"
	case p.WeightTime >= p.WeightComfort:
		return "faster options were favored over savings"
	default:
		return "more comfortable options were favored over savings"
	}
}

func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	if m%60 == 0 {
		return fmt.Sprintf("%dh", m/60)
	}
	return fmt.Sprintf("%dh %dm", m/60, m%60)
}
