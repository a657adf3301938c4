package indicators

import "math"

// RollingMean computes the trailing-window mean. A window containing NaN yields NaN.
func RollingMean(values []float64, window int) ([]float64, error) {
	if err := (IndicatorConfig{Period: window}).Validate(); err != nil {
		return nil, err
	}

	out := nanSeries(len(values))
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		for _, v := range values[i-window+1 : i+1] {
			sum += v
		}
		out[i] = sum / float64(window)
	}
	return out, nil
}

// RollingStd computes the trailing-window sample standard deviation (n-1 denominator).
// A window of one value has no spread and yields 0.
func RollingStd(values []float64, window int) ([]float64, error) {
	means, err := RollingMean(values, window)
	if err != nil {
		return nil, err
	}

	out := nanSeries(len(values))
	for i := window - 1; i < len(values); i++ {
		mean := means[i]
		if math.IsNaN(mean) {
			continue
		}
		if window == 1 {
			out[i] = 0
			continue
		}
		var sumSqr float64
		for _, v := range values[i-window+1 : i+1] {
			diff := v - mean
			sumSqr += diff * diff
		}
		out[i] = math.Sqrt(sumSqr / float64(window-1))
	}
	return out, nil
}
