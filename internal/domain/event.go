package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event is a disruption notice. The engine reads events and never mutates them.
type Event struct {
	ID        string
	TripID    string
	Kind      EventKind
	Payload   json.RawMessage
	Severity  Severity
	CreatedAt time.Time
}

// DelayPayload shifts a segment and everything after it.
type DelayPayload struct {
	SegmentID string `json:"segment_id"`
	DelayMin  int    `json:"delay_min"`
}

// WeatherPayload names an inclusive date window (YYYY-MM-DD).
type WeatherPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// PricePayload carries refreshed prices for price_change and fx_change events.
// Quotes and Segments map ids to new prices. Factor multiplies every price in
// Category (all optimized categories when empty) whose currency matches
// Currency (any currency when empty).
type PricePayload struct {
	Category Category           `json:"category,omitempty"`
	Quotes   map[string]float64 `json:"quotes,omitempty"`
	Segments map[string]float64 `json:"segments,omitempty"`
	Currency string             `json:"currency,omitempty"`
	Factor   float64            `json:"factor,omitempty"`
}

func (e *Event) Validate() error {
	if _, err := ParseEventKind(string(e.Kind)); err != nil {
		return err
	}
	if _, err := ParseSeverity(string(e.Severity)); err != nil {
		return err
	}
	_, err := e.DecodePayload()
	return err
}

// DecodePayload returns *DelayPayload, *WeatherPayload or *PricePayload
// depending on the event kind.
func (e *Event) DecodePayload() (any, error) {
	var target any
	switch e.Kind {
	case EventDelay:
		target = &DelayPayload{}
	case EventWeather:
		target = &WeatherPayload{}
	case EventPriceChange, EventFXChange:
		target = &PricePayload{}
	default:
		return nil, fmt.Errorf("%w: unknown event kind %q", ErrValidation, e.Kind)
	}
	if len(e.Payload) > 0 {
		if err := json.Unmarshal(e.Payload, target); err != nil {
			return nil, fmt.Errorf("%w: decoding %s payload: %v", ErrValidation, e.Kind, err)
		}
	}
	switch p := target.(type) {
	case *DelayPayload:
		if p.SegmentID == "" {
			return nil, fmt.Errorf("%w: delay payload requires segment_id", ErrValidation)
		}
		if p.DelayMin < 0 {
			return nil, fmt.Errorf("%w: delay_min must not be negative", ErrValidation)
		}
	case *WeatherPayload:
		if _, _, err := p.Window(time.UTC); err != nil {
			return nil, err
		}
	case *PricePayload:
		if p.Category != "" && !p.Category.Optimized() {
			return nil, fmt.Errorf("%w: price payload category %q is not optimized", ErrValidation, p.Category)
		}
		if p.Factor < 0 {
			return nil, fmt.Errorf("%w: price factor must not be negative", ErrValidation)
		}
		for id, v := range p.Quotes {
			if v < 0 {
				return nil, fmt.Errorf("%w: quote %s price must not be negative", ErrValidation, id)
			}
		}
		for id, v := range p.Segments {
			if v < 0 {
				return nil, fmt.Errorf("%w: segment %s price must not be negative", ErrValidation, id)
			}
		}
	}
	return target, nil
}

// Window returns [from 00:00, to+1day 00:00) in loc.
func (p WeatherPayload) Window(loc *time.Location) (time.Time, time.Time, error) {
	from, err := time.ParseInLocation("2006-01-02", p.From, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: weather from date: %v", ErrValidation, err)
	}
	toStr := CoalesceStr(p.To, p.From)
	to, err := time.ParseInLocation("2006-01-02", toStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: weather to date: %v", ErrValidation, err)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: weather window ends before it starts", ErrValidation)
	}
	return from, to.AddDate(0, 0, 1), nil
}
