package indicators

import (
	"math"
	"testing"
)

func TestRollingMean(t *testing.T) {
	mean, err := RollingMean([]float64{1, 2, 3, 4, math.NaN(), 6}, 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []float64{math.NaN(), 1.5, 2.5, 3.5, math.NaN(), math.NaN()}
	for i := range want {
		if math.IsNaN(want[i]) {
			if !math.IsNaN(mean[i]) {
				t.Errorf("index %d: expected NaN, got %f", i, mean[i])
			}
			continue
		}
		if math.Abs(mean[i]-want[i]) > 1e-12 {
			t.Errorf("index %d: expected %f, got %f", i, want[i], mean[i])
		}
	}
}

func TestRollingStd(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		window int
		index  int
		want   float64
	}{
		{name: "sample deviation", values: []float64{2, 4, 4, 4, 5, 5, 7, 9}, window: 8, index: 7, want: 2.138089935},
		{name: "pair", values: []float64{1, 3}, window: 2, index: 1, want: math.Sqrt2},
		{name: "flat window", values: []float64{5, 5, 5}, window: 3, index: 2, want: 0},
		{name: "single value window", values: []float64{3, 8}, window: 1, index: 1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			std, err := RollingStd(tt.values, tt.window)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if math.Abs(std[tt.index]-tt.want) > 1e-6 {
				t.Errorf("Expected %f, got %f", tt.want, std[tt.index])
			}
			for i := 0; i < tt.window-1; i++ {
				if !math.IsNaN(std[i]) {
					t.Errorf("index %d: expected NaN, got %f", i, std[i])
				}
			}
		})
	}
}

func TestRolling_InvalidWindow(t *testing.T) {
	if _, err := RollingMean([]float64{1, 2}, 0); err == nil {
		t.Error("Expected error for zero window")
	}
	if _, err := RollingStd([]float64{1, 2}, -1); err == nil {
		t.Error("Expected error for negative window")
	}
}
