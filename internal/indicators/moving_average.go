package indicators

import (
	"fmt"

	"featurePrep/internal/ports"
)

// MovingAverageType defines the type of moving average
type MovingAverageType string

const (
	// SimpleMovingAverage represents a simple moving average
	SimpleMovingAverage MovingAverageType = "SMA"
	// ExponentialMovingAverage represents an exponential moving average
	ExponentialMovingAverage MovingAverageType = "EMA"
)

// MovingAverageConfig holds configuration for moving average indicators
type MovingAverageConfig struct {
	IndicatorConfig
	Type MovingAverageType
}

// MovingAverage computes the configured moving average series.
func MovingAverage(values []float64, config MovingAverageConfig) ([]float64, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch config.Type {
	case SimpleMovingAverage:
		return RollingMean(values, config.Period)
	case ExponentialMovingAverage:
		return EMA(values, config.Period)
	default:
		return nil, fmt.Errorf("unsupported moving average type %q: %w", config.Type, ports.ErrInvalidArgument)
	}
}

// EMA computes the exponential moving average series.
// Leading NaN values are skipped; the average is seeded with the simple mean of
// the first period valid values and starts at that window's last index.
func EMA(values []float64, period int) ([]float64, error) {
	if err := (IndicatorConfig{Period: period}).Validate(); err != nil {
		return nil, err
	}

	out := nanSeries(len(values))
	start := firstValid(values)
	if len(values)-start < period {
		return out, nil
	}

	multiplier := 2.0 / float64(period+1)

	seed := 0.0
	for i := start; i < start+period; i++ {
		seed += values[i]
	}
	ema := seed / float64(period)
	out[start+period-1] = ema

	for i := start + period; i < len(values); i++ {
		ema = (values[i]-ema)*multiplier + ema
		out[i] = ema
	}
	return out, nil
}
