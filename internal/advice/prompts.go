package advice

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/itinera/internal/domain"
)

const explainSystemPrompt = `You are an expert travel planning advisor who explains optimization decisions clearly and concisely.`

const tipsSystemPrompt = `You are a travel advisor providing practical, location-specific advice.`

func explainPrompt(in ExplainInput) string {
	currency := domain.CoalesceStr(in.Currency, domain.DefaultCurrency)
	var b strings.Builder
	b.WriteString("Analyze this trip itinerary and explain the trade-offs made in the optimization.\n\n")
	fmt.Fprintf(&b, "Trip: %s to %s\n\nSelected segments:\n", in.Origin, in.Destination)
	for _, s := range in.Segments {
		fmt.Fprintf(&b, "%s: %s (%s %.0f, %dh, comfort: %.0f/10)\n",
			s.Category, domain.CoalesceStr(s.Provider, s.Title), currency, s.Price, (s.DurationMin+30)/60, s.ComfortScore)
	}
	p := in.Preferences
	fmt.Fprintf(&b, "\nUser preferences:\nCost priority: %.0f%%, Time priority: %.0f%%, Comfort priority: %.0f%%\n\n",
		p.WeightCost*100, p.WeightTime*100, p.WeightComfort*100)
	b.WriteString(`Provide 4-5 concise bullet points starting with "-" explaining why each segment was selected,
what trade-offs were made and how the choices align with the preference weights. Refer to actual numbers.`)
	return b.String()
}

func tipsPrompt(destination string, start, end time.Time) string {
	return fmt.Sprintf(`Provide travel information for %s from %s to %s:

1. Expected weather conditions and temperature range
2. What to pack
3. Festivals or seasonal highlights
4. Health and safety considerations

Format as:
WEATHER: (2-3 sentences)

TIPS:
- Tip 1
- Tip 2`, destination, start.Format("2006-01-02"), end.Format("2006-01-02"))
}
