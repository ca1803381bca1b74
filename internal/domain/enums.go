package domain

import "fmt"

type TripStatus string

const (
	TripDraft     TripStatus = "draft"
	TripOptimized TripStatus = "optimized"
	TripConfirmed TripStatus = "confirmed"
)

type Category string

const (
	CategoryTransport Category = "transport"
	CategoryStay      Category = "stay"
	CategoryActivity  Category = "activity"
	CategoryMisc      Category = "misc"
)

// OptimizedCategories lists the categories the engine selects quotes for, in
// canonical order. Misc is a budget bucket only.
var OptimizedCategories = []Category{CategoryTransport, CategoryStay, CategoryActivity}

// Valid reports whether c is one of the four budget categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryTransport, CategoryStay, CategoryActivity, CategoryMisc:
		return true
	}
	return false
}

// Optimized reports whether quotes and segments exist for c.
func (c Category) Optimized() bool {
	return c == CategoryTransport || c == CategoryStay || c == CategoryActivity
}

// Order returns the canonical position of c (transport, stay, activity, misc).
func (c Category) Order() int {
	switch c {
	case CategoryTransport:
		return 0
	case CategoryStay:
		return 1
	case CategoryActivity:
		return 2
	default:
		return 3
	}
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown category %q (transport|stay|activity|misc)", ErrValidation, s)
	}
	return c, nil
}

type SegmentStatus string

const (
	SegmentPlanned   SegmentStatus = "planned"
	SegmentReplanned SegmentStatus = "replanned"
	SegmentManual    SegmentStatus = "manual"
)

type EventKind string

const (
	EventDelay       EventKind = "delay"
	EventWeather     EventKind = "weather"
	EventPriceChange EventKind = "price_change"
	EventFXChange    EventKind = "fx_change"
)

func ParseEventKind(s string) (EventKind, error) {
	switch k := EventKind(s); k {
	case EventDelay, EventWeather, EventPriceChange, EventFXChange:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown event kind %q (delay|weather|price_change|fx_change)", ErrValidation, s)
}

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

func ParseSeverity(s string) (Severity, error) {
	switch sv := Severity(s); sv {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return sv, nil
	}
	return "", fmt.Errorf("%w: unknown severity %q (info|warning|critical)", ErrValidation, s)
}
