package sourcing

import (
	"context"
	"fmt"
	"os"

	"github.com/alexanderramin/itinera/internal/domain"
	"gopkg.in/yaml.v3"
)

// wildcardDestination matches every trip.
const wildcardDestination = "*"

// CatalogEntry is one offer in a catalog file. For stays, PricePerNight,
// when set, is multiplied by the trip's nights and the duration becomes the
// lodged minutes.
type CatalogEntry struct {
	Title         string         `yaml:"title"`
	Provider      string         `yaml:"provider"`
	Price         float64        `yaml:"price"`
	PricePerNight float64        `yaml:"price_per_night"`
	DurationMin   int            `yaml:"duration_min"`
	ComfortScore  float64        `yaml:"comfort_score"`
	Currency      string         `yaml:"currency"`
	Attributes    map[string]any `yaml:"attributes"`
}

type CatalogDestination struct {
	Name string `yaml:"name"`
	// Origin limits transport entries to trips leaving from it; empty matches any.
	Origin string                             `yaml:"origin"`
	Quotes map[domain.Category][]CatalogEntry `yaml:"quotes"`
}

type catalogFile struct {
	Destinations []CatalogDestination `yaml:"destinations"`
}

// CatalogSource serves quotes from a YAML catalog keyed by destination.
type CatalogSource struct {
	destinations []CatalogDestination
}

// LoadCatalog reads and parses a catalog file.
func LoadCatalog(path string) (*CatalogSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses catalog YAML and validates every entry.
func ParseCatalog(data []byte) (*CatalogSource, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	for _, d := range f.Destinations {
		if d.Name == "" {
			return nil, fmt.Errorf("catalog destination without a name")
		}
		for c, entries := range d.Quotes {
			if !c.Optimized() {
				return nil, fmt.Errorf("catalog %s: unknown category %q", d.Name, c)
			}
			for i, e := range entries {
				q := e.toQuote(c, TripContext{Nights: 1})
				if err := q.Validate(); err != nil {
					return nil, fmt.Errorf("catalog %s %s[%d]: %w", d.Name, c, i, err)
				}
			}
		}
	}
	return &CatalogSource{destinations: f.Destinations}, nil
}

func (s *CatalogSource) FetchCandidates(_ context.Context, tc TripContext, category domain.Category) ([]domain.Quote, error) {
	var out []domain.Quote
	for _, d := range s.destinations {
		if !s.matches(d, tc, category) {
			continue
		}
		for _, e := range d.Quotes[category] {
			out = append(out, e.toQuote(category, tc))
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("catalog has no %s for %s: %w", category, tc.Destination, ErrNoCandidates)
	}
	return out, nil
}

func (s *CatalogSource) matches(d CatalogDestination, tc TripContext, category domain.Category) bool {
	if d.Name != wildcardDestination && normalizeKey(d.Name) != normalizeKey(tc.Destination) {
		return false
	}
	if category == domain.CategoryTransport && d.Origin != "" && normalizeKey(d.Origin) != normalizeKey(tc.Origin) {
		return false
	}
	return true
}

func (e CatalogEntry) toQuote(c domain.Category, tc TripContext) domain.Quote {
	q := domain.Quote{
		Category:     c,
		Title:        e.Title,
		Source:       domain.CoalesceStr(e.Provider, "catalog"),
		Price:        e.Price,
		Currency:     domain.CoalesceStr(e.Currency, tc.Currency, domain.DefaultCurrency),
		DurationMin:  e.DurationMin,
		ComfortScore: e.ComfortScore,
		Attributes:   e.Attributes,
	}
	if c == domain.CategoryStay && e.PricePerNight > 0 {
		nights := max(tc.Nights, 1)
		q.Price = e.PricePerNight * float64(nights)
		q.DurationMin = nights * 24 * 60
	}
	return q
}
