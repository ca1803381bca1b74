package sourcing

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/llm"
)

// optionsPerCategory is how many offers the model is asked for.
const optionsPerCategory = 6

const quotesSystemPrompt = `You are a travel booking expert. Return only valid JSON, no additional text.`

// LLMSource generates quotes with a language model.
type LLMSource struct {
	client llm.LLMClient
}

func NewLLMSource(client llm.LLMClient) *LLMSource {
	return &LLMSource{client: client}
}

type generatedOption struct {
	Title        string         `json:"title"`
	Provider     string         `json:"provider"`
	Price        float64        `json:"price"`
	DurationMin  int            `json:"duration_min"`
	ComfortScore float64        `json:"comfort_score"`
	Options      map[string]any `json:"options"`
}

func validateOption(o generatedOption) error {
	if strings.TrimSpace(o.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if o.Price < 0 || o.DurationMin < 0 {
		return fmt.Errorf("price and duration must not be negative")
	}
	if o.ComfortScore < 0 || o.ComfortScore > 10 {
		return fmt.Errorf("comfort_score %.1f outside [0,10]", o.ComfortScore)
	}
	return nil
}

func (s *LLMSource) FetchCandidates(ctx context.Context, tc TripContext, category domain.Category) ([]domain.Quote, error) {
	prompt, err := quotesPrompt(tc, category)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskQuotes,
		SystemPrompt: quotesSystemPrompt,
		UserPrompt:   prompt,
		JSON:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("generating %s options: %w", category, err)
	}
	options, err := llm.ExtractJSONList(resp.Text, validateOption)
	if err != nil {
		return nil, fmt.Errorf("parsing %s options: %w", category, err)
	}

	stayMinutes := max(tc.Nights, 1) * 24 * 60
	quotes := make([]domain.Quote, 0, len(options))
	for _, o := range options {
		q := domain.Quote{
			Category:     category,
			Title:        strings.TrimSpace(o.Title),
			Source:       domain.CoalesceStr(strings.TrimSpace(o.Provider), "llm"),
			Price:        o.Price,
			Currency:     domain.CoalesceStr(tc.Currency, domain.DefaultCurrency),
			DurationMin:  o.DurationMin,
			ComfortScore: o.ComfortScore,
			Attributes:   o.Options,
		}
		if category == domain.CategoryStay {
			q.DurationMin = stayMinutes
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func quotesPrompt(tc TripContext, category domain.Category) (string, error) {
	start := tc.StartDate.Format("2006-01-02")
	end := tc.EndDate.Format("2006-01-02")
	budget := tc.BudgetHint(category)

	var b strings.Builder
	switch category {
	case domain.CategoryTransport:
		fmt.Fprintf(&b, "Generate %d realistic transportation options from %s to %s for %s.\n\n",
			optionsPerCategory, tc.Origin, tc.Destination, start)
		fmt.Fprintf(&b, "Budget consideration: %s %.0f\n\n", tc.Currency, budget)
		b.WriteString("Include flights, trains and buses in different classes.\n")
		b.WriteString("duration_min is the travel time in minutes.\n")
		b.WriteString(`options holds details such as departure, arrival and class.` + "\n")
	case domain.CategoryStay:
		fmt.Fprintf(&b, "Generate %d realistic accommodation options in %s from %s to %s (%d nights).\n\n",
			optionsPerCategory, tc.Destination, start, end, tc.Nights)
		fmt.Fprintf(&b, "Budget consideration: %s %.0f\n\n", tc.Currency, budget)
		b.WriteString("Include luxury, mid-range and budget hotels as well as homestays.\n")
		fmt.Fprintf(&b, "price is the total for %d nights and duration_min is %d.\n", tc.Nights, max(tc.Nights, 1)*24*60)
		b.WriteString(`options holds amenities, location, rating and whether breakfast is included.` + "\n")
	case domain.CategoryActivity:
		fmt.Fprintf(&b, "Generate %d realistic activity options in %s for %s.\n\n",
			optionsPerCategory, tc.Destination, start)
		fmt.Fprintf(&b, "Budget consideration: %s %.0f\n\n", tc.Currency, budget)
		b.WriteString("Include guided tours, adventure, cultural, food, museum and nature experiences.\n")
		b.WriteString("price is per person and comfort_score is physical ease (10 = very easy).\n")
		b.WriteString(`options holds type, inclusions and group size.` + "\n")
	default:
		return "", fmt.Errorf("%w: no quotes for category %q", domain.ErrValidation, category)
	}
	b.WriteString(`
Each option has: title, provider, price (in the budget currency), duration_min, comfort_score (1-10), options (object).
Return ONLY a JSON object of the form {"options": [ ... ]}.`)
	return b.String(), nil
}

const suggestSystemPrompt = `You are a local travel expert. Return only valid JSON, no additional text.`

// ActivitySuggester proposes activities for a trip from a traveler's interests.
type ActivitySuggester interface {
	SuggestActivities(ctx context.Context, tc TripContext, interests []string, budget float64) ([]domain.Quote, error)
}

var _ ActivitySuggester = (*LLMSource)(nil)

type suggestedActivity struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	DurationMin  int     `json:"duration_min"`
	ComfortScore float64 `json:"comfort_score"`
	Kind         string  `json:"category"`
}

// SuggestActivities asks the model for activities matching interests. A
// positive budget is the per-activity ceiling and suggestions above it are
// dropped.
func (s *LLMSource) SuggestActivities(ctx context.Context, tc TripContext, interests []string, budget float64) ([]domain.Quote, error) {
	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskQuotes,
		SystemPrompt: suggestSystemPrompt,
		UserPrompt:   suggestPrompt(tc, interests, budget),
		JSON:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("suggesting activities: %w", err)
	}
	items, err := llm.ExtractJSONList(resp.Text, func(a suggestedActivity) error {
		if err := validateOption(generatedOption{Title: a.Title, Price: a.Price, DurationMin: a.DurationMin, ComfortScore: a.ComfortScore}); err != nil {
			return err
		}
		if budget > 0 && a.Price > budget {
			return fmt.Errorf("price %.2f above budget %.2f", a.Price, budget)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing activity suggestions: %w", err)
	}

	quotes := make([]domain.Quote, 0, len(items))
	for _, a := range items {
		attrs := map[string]any{}
		if d := strings.TrimSpace(a.Description); d != "" {
			attrs["description"] = d
		}
		if k := strings.ToLower(strings.TrimSpace(a.Kind)); k != "" {
			attrs["kind"] = k
		}
		if len(interests) > 0 {
			attrs["interests"] = strings.Join(interests, ", ")
		}
		quotes = append(quotes, domain.Quote{
			Category:     domain.CategoryActivity,
			Title:        strings.TrimSpace(a.Title),
			Source:       "suggestion",
			Price:        a.Price,
			Currency:     domain.CoalesceStr(tc.Currency, domain.DefaultCurrency),
			DurationMin:  a.DurationMin,
			ComfortScore: a.ComfortScore,
			Attributes:   attrs,
		})
	}
	return quotes, nil
}

func suggestPrompt(tc TripContext, interests []string, budget float64) string {
	topics := strings.Join(interests, ", ")
	if topics == "" {
		topics = "general sightseeing"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest %d diverse activities for a traveler visiting %s between %s and %s.\n\n",
		optionsPerCategory, tc.Destination, tc.StartDate.Format("2006-01-02"), tc.EndDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "Traveler interests: %s\n", topics)
	if budget > 0 {
		fmt.Fprintf(&b, "Budget per activity: up to %s %.0f\n", tc.Currency, budget)
	} else {
		b.WriteString("Budget per activity: flexible\n")
	}
	b.WriteString(`
Each activity has: title, description (2-3 sentences), price (per person, in the budget currency), duration_min, comfort_score (1-10, 10 = very easy), category (culture, adventure, food, nature or relaxation).
Return ONLY a JSON object of the form {"activities": [ ... ]}.`)
	return b.String()
}
