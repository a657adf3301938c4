package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featurePrep/internal/ports"
)

func seq(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}

func TestTimeseriesSplit(t *testing.T) {
	tests := []struct {
		name       string
		n          int
		train, val float64
		wantSizes  [3]int
	}{
		{name: "even split", n: 8, train: 0.5, val: 0.25, wantSizes: [3]int{4, 2, 2}},
		{name: "floors cut points", n: 10, train: 0.5, val: 0.25, wantSizes: [3]int{5, 2, 3}},
		{name: "zero train", n: 4, train: 0, val: 0.5, wantSizes: [3]int{0, 2, 2}},
		{name: "ratios reach one", n: 4, train: 0.5, val: 0.5, wantSizes: [3]int{2, 2, 0}},
		{name: "ratios exceed one", n: 4, train: 0.75, val: 0.75, wantSizes: [3]int{3, 1, 0}},
		{name: "empty input", n: 0, train: 0.5, val: 0.25, wantSizes: [3]int{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			train, val, test, err := TimeseriesSplit(seq(tt.n), tt.train, tt.val)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSizes, [3]int{len(train), len(val), len(test)})
		})
	}
}

func TestTimeseriesSplit_Partitions(t *testing.T) {
	ratios := []float64{0, 0.1, 0.25, 0.5, 0.7, 0.85, 1}
	for n := 1; n <= 40; n++ {
		for _, r1 := range ratios {
			for _, r2 := range ratios {
				if r1+r2 > 1 {
					continue
				}
				input := seq(n)
				train, val, test, err := TimeseriesSplit(input, r1, r2)
				require.NoError(t, err)

				joined := append(append(append([]int{}, train...), val...), test...)
				require.Equal(t, input, joined, "n=%d r1=%v r2=%v", n, r1, r2)
			}
		}
	}
}

func TestTimeseriesSplit_InvalidRatios(t *testing.T) {
	for _, r := range [][2]float64{{-0.1, 0.2}, {0.5, 1.5}, {2, 0}} {
		_, _, _, err := TimeseriesSplit(seq(10), r[0], r[1])
		assert.ErrorIs(t, err, ports.ErrInvalidArgument)
	}
}

func TestMiniBatch(t *testing.T) {
	batches, err := MiniBatch(seq(10), 3)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, []int{0, 1, 2, 3}, batches[0])
	assert.Equal(t, []int{4, 5, 6}, batches[1])
	assert.Equal(t, []int{7, 8, 9}, batches[2])
}

func TestMiniBatch_Properties(t *testing.T) {
	for n := 0; n <= 30; n++ {
		for k := 1; k <= 12; k++ {
			input := seq(n)
			batches, err := MiniBatch(input, k)
			require.NoError(t, err)
			require.Len(t, batches, k)

			var joined []int
			smallest, largest := n, 0
			for _, b := range batches {
				joined = append(joined, b...)
				smallest = min(smallest, len(b))
				largest = max(largest, len(b))
			}
			assert.Equal(t, n, len(joined), "n=%d k=%d", n, k)
			if n > 0 {
				assert.Equal(t, input, joined, "n=%d k=%d", n, k)
			}
			assert.LessOrEqual(t, largest-smallest, 1, "n=%d k=%d", n, k)
		}
	}
}

func TestMiniBatch_MoreBatchesThanRows(t *testing.T) {
	batches, err := MiniBatch(seq(2), 4)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0}, {1}, {}, {}}, batches)
}

func TestMiniBatch_InvalidCount(t *testing.T) {
	for _, k := range []int{0, -3} {
		_, err := MiniBatch(seq(5), k)
		assert.ErrorIs(t, err, ports.ErrInvalidArgument)
	}
}

func TestTable_SplitAndBatches(t *testing.T) {
	table := NewTable(hourly(10))
	values := make([]float64, 10)
	for i := range values {
		values[i] = float64(i)
	}
	require.NoError(t, table.AddColumn("v", KindRaw, values))

	train, val, test, err := table.Split(0.5, 0.25)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 2, 3}, []int{train.Len(), val.Len(), test.Len()})
	col, _ := val.Column("v")
	assert.Equal(t, []float64{5, 6}, col.Values)

	batches, err := table.Batches(4)
	require.NoError(t, err)
	sizes := make([]int, len(batches))
	for i, b := range batches {
		sizes[i] = b.Len()
	}
	assert.Equal(t, []int{3, 3, 2, 2}, sizes)
}
