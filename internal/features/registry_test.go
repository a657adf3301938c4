package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featurePrep/internal/ports"
)

func TestLookup(t *testing.T) {
	def, err := Lookup("rsi14")
	require.NoError(t, err)
	assert.Equal(t, "rsi14", def.Name)
	assert.Equal(t, 14, def.Lookback)

	_, err = Lookup("rsi15")
	assert.ErrorIs(t, err, ports.ErrInvalidArgument)
}

func TestNames(t *testing.T) {
	names := Names()
	assert.Len(t, names, len(registry))
	assert.IsNonDecreasing(t, names)
	for _, name := range names {
		def, err := Lookup(name)
		require.NoError(t, err)
		assert.NotNil(t, def.Compute, name)
		assert.NotNil(t, def.Categorize, name)
	}
}

func TestThresholds(t *testing.T) {
	got := Thresholds(30, 70)([]float64{10, 30, 50, 70, 90, math.NaN()})

	assert.Equal(t, []float64{0, 1, 1, 2, 2}, got[:5])
	assert.True(t, math.IsNaN(got[5]))
}

func TestDirection(t *testing.T) {
	got := Direction()([]float64{5, 4, 4, 6, math.NaN(), 3})

	assert.True(t, math.IsNaN(got[0]))
	assert.Equal(t, []float64{0, 1, 2}, got[1:4])
	assert.True(t, math.IsNaN(got[4]))
	assert.True(t, math.IsNaN(got[5]))
}

func TestPlainFeatures(t *testing.T) {
	s := Series{
		Open:   []float64{10, 10, 12},
		High:   []float64{11, 10, 14},
		Low:    []float64{9, 10, 10},
		Close:  []float64{10, 10, 13},
		Volume: []float64{1, 2, 3},
	}

	body := bodyRatio(s)
	assert.Equal(t, []float64{0, 0, 0.25}, body)

	ret := logReturn(s)
	assert.True(t, math.IsNaN(ret[0]))
	assert.Equal(t, 0.0, ret[1])
	assert.InDelta(t, math.Log(1.3), ret[2], 1e-12)

	ratio := volumeRatio(2)(s)
	assert.True(t, math.IsNaN(ratio[0]))
	assert.InDelta(t, 2/1.5, ratio[1], 1e-12)
	assert.InDelta(t, 3/2.5, ratio[2], 1e-12)
}
