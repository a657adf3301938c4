package preprocess

import (
	"fmt"
	"math"

	"featurePrep/internal/dataset"
	"featurePrep/internal/indicators"
	"featurePrep/internal/ports"
)

// RollingZScore standardizes each value against its trailing window and clips
// the result to [-limit, limit]. Positions before the first full window, or
// whose window holds NaN, are NaN. A flat window scores 0.
func RollingZScore(values []float64, window int, limit float64) ([]float64, error) {
	if !(limit > 0) {
		return nil, fmt.Errorf("z-score limit must be positive, got %v: %w", limit, ports.ErrInvalidArgument)
	}
	means, err := indicators.RollingMean(values, window)
	if err != nil {
		return nil, err
	}
	stds, err := indicators.RollingStd(values, window)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(values))
	for i, v := range values {
		mean, std := means[i], stds[i]
		switch {
		case math.IsNaN(mean) || math.IsNaN(std):
			out[i] = math.NaN()
		case std == 0:
			out[i] = 0
		default:
			z := (v - mean) / std
			out[i] = math.Max(-limit, math.Min(limit, z))
		}
	}
	return out, nil
}

// RatioOfShift returns values[t] / values[t-1]. The first position, and any
// position whose previous value is zero or NaN, is NaN.
func RatioOfShift(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i == 0 || values[i-1] == 0 || math.IsNaN(values[i-1]) {
			out[i] = math.NaN()
			continue
		}
		out[i] = values[i] / values[i-1]
	}
	return out
}

// Normalizer scales a table's eligible columns.
type Normalizer struct {
	Window int
	Limit  float64
}

// Validate checks the window and the clipping limit.
func (n Normalizer) Validate() error {
	if n.Window <= 0 {
		return fmt.Errorf("standardization window must be positive, got %d: %w", n.Window, ports.ErrInvalidArgument)
	}
	if !(n.Limit > 0) {
		return fmt.Errorf("standardization limit must be positive, got %v: %w", n.Limit, ports.ErrInvalidArgument)
	}
	return nil
}

// Normalize z-scores every z-score eligible column, then applies the
// ratio-of-shift to every ratio eligible column, then drops rows holding NaN.
// It returns the number of dropped rows.
func (n Normalizer) Normalize(t *dataset.Table) (int, error) {
	if err := n.Validate(); err != nil {
		return 0, err
	}

	for _, col := range t.Columns() {
		if !col.Kind.ZScore() {
			continue
		}
		z, err := RollingZScore(col.Values, n.Window, n.Limit)
		if err != nil {
			return 0, fmt.Errorf("failed to standardize %s: %w", col.Name, err)
		}
		col.Values = z
	}

	for _, col := range t.Columns() {
		if col.Kind.Ratio() {
			col.Values = RatioOfShift(col.Values)
		}
	}

	return t.DropMissing(), nil
}
