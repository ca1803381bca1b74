package domain

import (
	"fmt"
	"math"
	"time"
)

// DefaultWeightTolerance is how far the weight sum may drift from 1.
const DefaultWeightTolerance = 1e-6

type Preferences struct {
	TripID        string
	WeightCost    float64
	WeightTime    float64
	WeightComfort float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type WeightDimension string

const (
	WeightCost    WeightDimension = "cost"
	WeightTime    WeightDimension = "time"
	WeightComfort WeightDimension = "comfort"
)

func ParseWeightDimension(s string) (WeightDimension, error) {
	switch d := WeightDimension(s); d {
	case WeightCost, WeightTime, WeightComfort:
		return d, nil
	}
	return "", fmt.Errorf("%w: unknown weight %q (cost|time|comfort)", ErrValidation, s)
}

// Sum returns weight_cost + weight_time + weight_comfort.
func (p Preferences) Sum() float64 {
	return p.WeightCost + p.WeightTime + p.WeightComfort
}

// Validate checks every weight is in [0,1] and that they sum to 1 within tol.
func (p Preferences) Validate(tol float64) error {
	for name, w := range map[string]float64{
		"weight_cost":    p.WeightCost,
		"weight_time":    p.WeightTime,
		"weight_comfort": p.WeightComfort,
	} {
		if math.IsNaN(w) || w < 0 || w > 1 {
			return fmt.Errorf("%w: %s=%.4f is outside [0,1]", ErrValidation, name, w)
		}
	}
	if math.Abs(p.Sum()-1) > tol {
		return fmt.Errorf("%w: weights sum to %.6f, want 1", ErrValidation, p.Sum())
	}
	return nil
}

// Adjust sets one weight and splits the remainder evenly between the other two.
func (p *Preferences) Adjust(dim WeightDimension, value float64, now time.Time) error {
	if math.IsNaN(value) || value < 0 || value > 1 {
		return fmt.Errorf("%w: weight %.4f is outside [0,1]", ErrValidation, value)
	}
	other := (1 - value) / 2
	switch dim {
	case WeightCost:
		p.WeightCost, p.WeightTime, p.WeightComfort = value, other, other
	case WeightTime:
		p.WeightCost, p.WeightTime, p.WeightComfort = other, value, other
	case WeightComfort:
		p.WeightCost, p.WeightTime, p.WeightComfort = other, other, value
	default:
		return fmt.Errorf("%w: unknown weight %q", ErrValidation, dim)
	}
	p.UpdatedAt = now
	return nil
}

// BalancedPreferences splits weight evenly across the three dimensions.
func BalancedPreferences(tripID string) Preferences {
	third := 1.0 / 3
	return Preferences{TripID: tripID, WeightCost: third, WeightTime: third, WeightComfort: 1 - 2*third}
}
