// Package advice narrates optimized itineraries and fetches destination tips.
// Everything here is presentational: when the language model is unavailable
// or its output is unusable, deterministic fallbacks are returned instead of
// errors.
package advice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/alexanderramin/itinera/internal/llm"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultCacheMaxSize = 128
	defaultCacheTTL     = 6 * time.Hour
)

// CacheConfig configures the weather/tips cache.
type CacheConfig struct {
	MaxSize int
	TTL     time.Duration
}

// ExplainInput is the itinerary to narrate.
type ExplainInput struct {
	Origin      string
	Destination string
	Currency    string
	Segments    []*domain.Segment
	Preferences domain.Preferences
}

// WeatherTips is the outlook for a destination and date range.
type WeatherTips struct {
	Weather string
	Tips    []string
	// Fallback is set when the static default was returned.
	Fallback bool
}

// Advisor produces trade-off explanations and weather/packing tips.
type Advisor interface {
	Explain(ctx context.Context, in ExplainInput) []string
	WeatherAndTips(ctx context.Context, destination string, start, end time.Time) WeatherTips
}

type tipsEntry struct {
	tips     WeatherTips
	storedAt time.Time
}

type advisor struct {
	client llm.LLMClient
	cache  *lru.Cache[string, tipsEntry]
	ttl    time.Duration
	now    func() time.Time
}

// NewAdvisor creates an Advisor backed by an LLM client. Zero cache values
// fall back to defaults.
func NewAdvisor(client llm.LLMClient, config CacheConfig) Advisor {
	if config.MaxSize <= 0 {
		config.MaxSize = defaultCacheMaxSize
	}
	if config.TTL <= 0 {
		config.TTL = defaultCacheTTL
	}
	cache, err := lru.New[string, tipsEntry](config.MaxSize)
	if err != nil {
		panic(fmt.Sprintf("advice: creating cache: %v", err))
	}
	return &advisor{client: client, cache: cache, ttl: config.TTL, now: time.Now}
}

func (a *advisor) Explain(ctx context.Context, in ExplainInput) []string {
	if len(in.Segments) == 0 || a.client == nil {
		return DeterministicExplain(in)
	}
	resp, err := a.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskExplain,
		SystemPrompt: explainSystemPrompt,
		UserPrompt:   explainPrompt(in),
	})
	if err != nil {
		return DeterministicExplain(in)
	}
	bullets := llm.ParseBullets(resp.Text)
	if len(bullets) == 0 {
		return DeterministicExplain(in)
	}
	return bullets
}

func (a *advisor) WeatherAndTips(ctx context.Context, destination string, start, end time.Time) WeatherTips {
	key := tipsKey(destination, start, end)

	if entry, ok := a.cache.Get(key); ok {
		if a.now().Sub(entry.storedAt) < a.ttl {
			return entry.tips
		}
		a.cache.Remove(key)
	}

	if a.client == nil {
		return FallbackWeatherTips()
	}
	resp, err := a.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskTips,
		SystemPrompt: tipsSystemPrompt,
		UserPrompt:   tipsPrompt(destination, start, end),
	})
	if err != nil {
		return FallbackWeatherTips()
	}
	tips := parseWeatherTips(resp.Text)

	a.cache.Add(key, tipsEntry{tips: tips, storedAt: a.now()})
	return tips
}

func tipsKey(destination string, start, end time.Time) string {
	return strings.ToLower(strings.TrimSpace(destination)) + "|" +
		start.Format("2006-01-02") + "|" + end.Format("2006-01-02")
}

// parseWeatherTips reads the "WEATHER: ... TIPS: - ..." layout. A missing
// weather section falls back to the first paragraph; missing tips fall back
// to the default packing list.
func parseWeatherTips(text string) WeatherTips {
	weather := llm.Section(text, "WEATHER")
	if weather == "" {
		weather = strings.TrimSpace(strings.SplitN(strings.TrimSpace(text), "\n\n", 2)[0])
	}
	if weather == "" {
		weather = weatherNotAvailable
	}
	tips := llm.ParseBullets(llm.Section(text, "TIPS"))
	if len(tips) == 0 {
		tips = llm.ParseBullets(text)
	}
	if len(tips) == 0 {
		tips = append([]string(nil), defaultPackingTips...)
	}
	return WeatherTips{Weather: weather, Tips: tips}
}
