package indicators

import (
	"math"
	"testing"
)

func TestMACD_LinearSeries(t *testing.T) {
	config := MACDConfig{FastPeriod: 2, SlowPeriod: 3, SignalPeriod: 2}
	series, err := MACD([]float64{1, 2, 3, 4, 5, 6}, config)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// EMA(2) lags a unit slope by 0.5 and EMA(3) by 1.0, so MACD settles at 0.5.
	for i := 0; i < 2; i++ {
		if !math.IsNaN(series.MACD[i]) {
			t.Errorf("index %d: expected NaN MACD, got %f", i, series.MACD[i])
		}
	}
	for i := 2; i < 6; i++ {
		if math.Abs(series.MACD[i]-0.5) > 1e-12 {
			t.Errorf("index %d: expected MACD 0.5, got %f", i, series.MACD[i])
		}
	}

	if config.WarmUp() != 3 {
		t.Fatalf("Expected warm-up 3, got %d", config.WarmUp())
	}
	if !math.IsNaN(series.Signal[2]) {
		t.Errorf("Expected NaN signal before warm-up, got %f", series.Signal[2])
	}
	for i := config.WarmUp(); i < 6; i++ {
		if math.Abs(series.Signal[i]-0.5) > 1e-12 {
			t.Errorf("index %d: expected signal 0.5, got %f", i, series.Signal[i])
		}
		if math.Abs(series.Histogram[i]) > 1e-12 {
			t.Errorf("index %d: expected zero histogram, got %f", i, series.Histogram[i])
		}
	}
}

func TestMACDConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  MACDConfig
		wantErr bool
	}{
		{name: "classic", config: MACDConfig{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9}},
		{name: "zero signal", config: MACDConfig{FastPeriod: 12, SlowPeriod: 26}, wantErr: true},
		{name: "fast not shorter than slow", config: MACDConfig{FastPeriod: 26, SlowPeriod: 12, SignalPeriod: 9}, wantErr: true},
		{name: "negative fast", config: MACDConfig{FastPeriod: -1, SlowPeriod: 12, SignalPeriod: 9}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
