// Package features builds engineered indicator columns for a candle table and
// provides the compute and cache-load strategies that attach them.
package features

import (
	"fmt"
	"math"
	"sort"

	"github.com/markcheno/go-talib"

	"featurePrep/internal/dataset"
	"featurePrep/internal/indicators"
	"featurePrep/internal/ports"
)

// Series holds the candle columns a feature is computed from.
type Series struct {
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}

// Categorizer maps a continuous feature onto bucket indices. NaN stays NaN.
type Categorizer func(values []float64) []float64

// Definition describes one engineered feature.
type Definition struct {
	Name string
	// Kind is the scaling applied when the feature is left continuous.
	Kind dataset.Kind
	// Lookback is the number of leading rows without a meaningful value.
	Lookback   int
	Compute    func(s Series) []float64
	Categorize Categorizer
}

var registry = map[string]Definition{
	"rsi14": {
		Name: "rsi14", Kind: dataset.KindZScore, Lookback: 14,
		Compute:    func(s Series) []float64 { return talib.Rsi(s.Close, 14) },
		Categorize: Thresholds(30, 70),
	},
	"mfi14": {
		Name: "mfi14", Kind: dataset.KindZScore, Lookback: 14,
		Compute:    func(s Series) []float64 { return talib.Mfi(s.High, s.Low, s.Close, s.Volume, 14) },
		Categorize: Thresholds(20, 80),
	},
	"cci20": {
		Name: "cci20", Kind: dataset.KindZScore, Lookback: 19,
		Compute:    func(s Series) []float64 { return talib.Cci(s.High, s.Low, s.Close, 20) },
		Categorize: Thresholds(-100, 100),
	},
	"adx14": {
		Name: "adx14", Kind: dataset.KindZScore, Lookback: 27,
		Compute:    func(s Series) []float64 { return talib.Adx(s.High, s.Low, s.Close, 14) },
		Categorize: Thresholds(20, 40),
	},
	"atr14": {
		Name: "atr14", Kind: dataset.KindZScoreRatio, Lookback: 14,
		Compute:    func(s Series) []float64 { return talib.Atr(s.High, s.Low, s.Close, 14) },
		Categorize: Direction(),
	},
	"obv": {
		Name: "obv", Kind: dataset.KindZScore, Lookback: 0,
		Compute:    func(s Series) []float64 { return talib.Obv(s.Close, s.Volume) },
		Categorize: Direction(),
	},
	"mom10": {
		Name: "mom10", Kind: dataset.KindZScore, Lookback: 10,
		Compute:    func(s Series) []float64 { return talib.Mom(s.Close, 10) },
		Categorize: Thresholds(0),
	},
	"roc10": {
		Name: "roc10", Kind: dataset.KindZScore, Lookback: 10,
		Compute:    func(s Series) []float64 { return talib.Roc(s.Close, 10) },
		Categorize: Thresholds(0),
	},
	"ema_gap20": {
		Name: "ema_gap20", Kind: dataset.KindZScore, Lookback: 19,
		Compute:    emaGap(20),
		Categorize: Thresholds(0),
	},
	"log_return": {
		Name: "log_return", Kind: dataset.KindZScore, Lookback: 1,
		Compute:    logReturn,
		Categorize: Thresholds(0),
	},
	"volume_ratio": {
		Name: "volume_ratio", Kind: dataset.KindZScore, Lookback: 19,
		Compute:    volumeRatio(20),
		Categorize: Thresholds(1),
	},
	"body_ratio": {
		Name: "body_ratio", Kind: dataset.KindRaw, Lookback: 0,
		Compute:    bodyRatio,
		Categorize: Thresholds(-0.5, 0.5),
	},
}

// Lookup returns the definition registered under name.
func Lookup(name string) (Definition, error) {
	def, ok := registry[name]
	if !ok {
		return Definition{}, fmt.Errorf("unknown feature %q: %w", name, ports.ErrInvalidArgument)
	}
	return def, nil
}

// Names lists every registered feature in lexical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Thresholds buckets each value by the number of ascending bounds it reaches.
func Thresholds(bounds ...float64) Categorizer {
	return func(values []float64) []float64 {
		out := make([]float64, len(values))
		for i, v := range values {
			if math.IsNaN(v) {
				out[i] = math.NaN()
				continue
			}
			bucket := 0
			for _, b := range bounds {
				if v >= b {
					bucket++
				}
			}
			out[i] = float64(bucket)
		}
		return out
	}
}

// Direction buckets each value against the previous one: 0 falling, 1 flat,
// 2 rising. The first value, or one following NaN, is NaN.
func Direction() Categorizer {
	return func(values []float64) []float64 {
		out := make([]float64, len(values))
		for i, v := range values {
			switch {
			case i == 0 || math.IsNaN(v) || math.IsNaN(values[i-1]):
				out[i] = math.NaN()
			case v < values[i-1]:
				out[i] = 0
			case v == values[i-1]:
				out[i] = 1
			default:
				out[i] = 2
			}
		}
		return out
	}
}

func emaGap(period int) func(Series) []float64 {
	return func(s Series) []float64 {
		ema := talib.Ema(s.Close, period)
		out := make([]float64, len(s.Close))
		for i, c := range s.Close {
			if ema[i] == 0 {
				out[i] = math.NaN()
				continue
			}
			out[i] = c/ema[i] - 1
		}
		return out
	}
}

func logReturn(s Series) []float64 {
	out := make([]float64, len(s.Close))
	for i, c := range s.Close {
		if i == 0 || s.Close[i-1] <= 0 || c <= 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = math.Log(c / s.Close[i-1])
	}
	return out
}

func volumeRatio(window int) func(Series) []float64 {
	return func(s Series) []float64 {
		means, err := indicators.RollingMean(s.Volume, window)
		if err != nil {
			return nanValues(len(s.Volume))
		}
		out := make([]float64, len(s.Volume))
		for i, v := range s.Volume {
			if means[i] == 0 || math.IsNaN(means[i]) {
				out[i] = math.NaN()
				continue
			}
			out[i] = v / means[i]
		}
		return out
	}
}

func bodyRatio(s Series) []float64 {
	out := make([]float64, len(s.Close))
	for i := range s.Close {
		span := s.High[i] - s.Low[i]
		if span == 0 {
			out[i] = 0
			continue
		}
		out[i] = (s.Close[i] - s.Open[i]) / span
	}
	return out
}

func nanValues(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
