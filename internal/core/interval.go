// This file implements the Strategy Pattern for cost normalisation.
// Each interval has a normaliser that converts an item's cost into the amount
// deducted from a single pay cycle.

package core

import "fmt"

// CostNormalizer converts an item's cost into its per-pay-cycle amount.
type CostNormalizer interface {
	Normalize(cost int64) int64
}

// PerCycle charges the full cost against every pay cycle.
type PerCycle struct{}

func (PerCycle) Normalize(cost int64) int64 {
	return cost
}

// Amortized spreads a cost over a fixed number of pay cycles, truncating.
type Amortized struct {
	Cycles int64
}

func (a Amortized) Normalize(cost int64) int64 {
	return cost / a.Cycles
}

// Monthly costs are compared against a fortnightly pay cycle by dividing by 3.
var normalizers = map[Interval]CostNormalizer{
	Weekly:      PerCycle{},
	Fortnightly: PerCycle{},
	Monthly:     Amortized{Cycles: 3},
}

// Normalizer returns the cost normaliser for the interval.
func (i Interval) Normalizer() (CostNormalizer, error) {
	n, ok := normalizers[i]
	if !ok {
		return nil, fmt.Errorf("unknown interval: %q", string(i))
	}
	return n, nil
}

// EffectiveCost is the amount an item with this interval takes from one pay cycle.
func (i Interval) EffectiveCost(cost int64) (int64, error) {
	n, err := i.Normalizer()
	if err != nil {
		return 0, err
	}
	return n.Normalize(cost), nil
}
