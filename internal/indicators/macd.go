package indicators

import (
	"fmt"

	"featurePrep/internal/ports"
)

// MACDConfig holds the three MACD periods.
type MACDConfig struct {
	FastPeriod   int
	SlowPeriod   int
	SignalPeriod int
}

// Validate checks that all periods are positive and fast is shorter than slow.
func (c MACDConfig) Validate() error {
	for _, p := range []int{c.FastPeriod, c.SlowPeriod, c.SignalPeriod} {
		if err := (IndicatorConfig{Period: p}).Validate(); err != nil {
			return fmt.Errorf("invalid MACD periods %d/%d/%d: %w", c.FastPeriod, c.SlowPeriod, c.SignalPeriod, err)
		}
	}
	if c.FastPeriod >= c.SlowPeriod {
		return fmt.Errorf("MACD fast period %d must be less than slow period %d: %w", c.FastPeriod, c.SlowPeriod, ports.ErrInvalidArgument)
	}
	return nil
}

// WarmUp returns the first index at which the signal line is defined.
func (c MACDConfig) WarmUp() int {
	return c.SlowPeriod + c.SignalPeriod - 2
}

// MACDSeries holds the oscillator, its signal line and their difference.
type MACDSeries struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes EMA(fast) - EMA(slow) and its EMA(signal) signal line.
func MACD(values []float64, config MACDConfig) (*MACDSeries, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	fast, err := EMA(values, config.FastPeriod)
	if err != nil {
		return nil, fmt.Errorf("fast EMA: %w", err)
	}
	slow, err := EMA(values, config.SlowPeriod)
	if err != nil {
		return nil, fmt.Errorf("slow EMA: %w", err)
	}

	macd := make([]float64, len(values))
	for i := range values {
		macd[i] = fast[i] - slow[i] // NaN until the slow EMA is seeded
	}

	signal, err := EMA(macd, config.SignalPeriod)
	if err != nil {
		return nil, fmt.Errorf("signal EMA: %w", err)
	}

	hist := make([]float64, len(values))
	for i := range values {
		hist[i] = macd[i] - signal[i]
	}

	return &MACDSeries{MACD: macd, Signal: signal, Histogram: hist}, nil
}
