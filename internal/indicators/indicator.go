// Package indicators computes indicator series over float64 price slices.
// Every series has the same length as its input; positions without enough
// history hold NaN.
package indicators

import (
	"fmt"
	"math"

	"featurePrep/internal/ports"
)

// IndicatorConfig holds common configuration for indicators
type IndicatorConfig struct {
	Period int
}

// Validate checks that the period is usable.
func (c IndicatorConfig) Validate() error {
	if c.Period <= 0 {
		return fmt.Errorf("period must be positive, got %d: %w", c.Period, ports.ErrInvalidArgument)
	}
	return nil
}

// nanSeries returns a slice of n NaN values.
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// firstValid returns the index of the first non-NaN value, or len(values).
func firstValid(values []float64) int {
	for i, v := range values {
		if !math.IsNaN(v) {
			return i
		}
	}
	return len(values)
}
