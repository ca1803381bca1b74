package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alexanderramin/itinera/internal/domain"
	"github.com/spf13/pflag"
)

var (
	_ pflag.Value = (*eventKindValue)(nil)
	_ pflag.Value = (*severityValue)(nil)
	_ pflag.Value = (*weightValue)(nil)
	_ pflag.Value = (*capsValue)(nil)
)

type eventKindValue domain.EventKind

func (v *eventKindValue) String() string { return string(*v) }
func (v *eventKindValue) Type() string   { return "kind" }

func (v *eventKindValue) Set(s string) error {
	k, err := domain.ParseEventKind(strings.ToLower(s))
	if err != nil {
		return err
	}
	*v = eventKindValue(k)
	return nil
}

type severityValue domain.Severity

func (v *severityValue) String() string { return string(*v) }
func (v *severityValue) Type() string   { return "severity" }

func (v *severityValue) Set(s string) error {
	sv, err := domain.ParseSeverity(strings.ToLower(s))
	if err != nil {
		return err
	}
	*v = severityValue(sv)
	return nil
}

type weightValue domain.WeightDimension

func (v *weightValue) String() string { return string(*v) }
func (v *weightValue) Type() string   { return "weight" }

func (v *weightValue) Set(s string) error {
	d, err := domain.ParseWeightDimension(strings.ToLower(s))
	if err != nil {
		return err
	}
	*v = weightValue(d)
	return nil
}

// capsValue collects repeated --cap category=amount flags.
type capsValue map[domain.Category]float64

func (v capsValue) Type() string { return "category=amount" }

func (v capsValue) String() string {
	keys := make([]string, 0, len(v))
	for c := range v {
		keys = append(keys, string(c))
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, v[domain.Category(k)])
	}
	return strings.Join(parts, ",")
}

func (v capsValue) Set(s string) error {
	for _, pair := range strings.Split(s, ",") {
		name, amount, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return fmt.Errorf("cap %q must look like category=amount", pair)
		}
		c, err := domain.ParseCategory(strings.ToLower(strings.TrimSpace(name)))
		if err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
		if err != nil {
			return fmt.Errorf("cap for %s: %w", c, err)
		}
		v[c] = f
	}
	return nil
}
