package dataset

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featurePrep/internal/domain"
	"featurePrep/internal/ports"
)

func hourly(n int) []time.Time {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := make([]time.Time, n)
	for i := range ts {
		ts[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return ts
}

func TestFromKlines(t *testing.T) {
	ts := hourly(2)
	klines := []*domain.Kline{
		{OpenTime: ts[0], Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
		{OpenTime: ts[1], Open: 1.5, High: 3, Low: 1, Close: 2.5, Volume: 20},
	}

	table := FromKlines(klines)

	require.Equal(t, 2, table.Len())
	assert.Equal(t, []string{ColumnOpen, ColumnHigh, ColumnLow, ColumnClose, ColumnVolume}, table.ColumnNames())
	closeCol, ok := table.Column(ColumnClose)
	require.True(t, ok)
	assert.Equal(t, []float64{1.5, 2.5}, closeCol.Values)
	assert.Equal(t, KindZScoreRatio, closeCol.Kind)
	assert.Equal(t, []int{0, 0}, table.Labels())
	assert.True(t, ts[1].Equal(table.Timestamps()[1]))
}

func TestTable_AddColumn(t *testing.T) {
	table := NewTable(hourly(3))

	require.NoError(t, table.AddColumn("rsi14", KindZScore, []float64{1, 2, 3}))

	err := table.AddColumn("short", KindRaw, []float64{1})
	assert.ErrorIs(t, err, ports.ErrInvalidArgument)

	err = table.AddColumn(ColumnLabel, KindRaw, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ports.ErrInvalidArgument)

	require.NoError(t, table.AddColumn("rsi14", KindCategorical, []float64{0, 1, 2}))
	assert.Equal(t, []string{"rsi14"}, table.ColumnNames())
	col, _ := table.Column("rsi14")
	assert.Equal(t, KindCategorical, col.Kind)
}

func TestTable_DropMissing(t *testing.T) {
	ts := hourly(5)
	table := NewTable(ts)
	require.NoError(t, table.AddColumn("a", KindRaw, []float64{math.NaN(), 1, 2, 3, 4}))
	require.NoError(t, table.AddColumn("b", KindRaw, []float64{0, 1, math.NaN(), 3, 4}))
	require.NoError(t, table.SetLabels([]int{1, 2, 1, 0, 2}))

	removed := table.DropMissing()

	assert.Equal(t, 2, removed)
	require.Equal(t, 3, table.Len())
	a, _ := table.Column("a")
	b, _ := table.Column("b")
	assert.Equal(t, []float64{1, 3, 4}, a.Values)
	assert.Equal(t, []float64{1, 3, 4}, b.Values)
	assert.Equal(t, []int{2, 0, 2}, table.Labels())
	assert.True(t, ts[1].Equal(table.Timestamps()[0]))
	assert.True(t, ts[4].Equal(table.Timestamps()[2]))
}

func TestTable_SetLabelsLength(t *testing.T) {
	table := NewTable(hourly(2))
	assert.ErrorIs(t, table.SetLabels([]int{1}), ports.ErrInvalidArgument)
}

func TestTable_SliceIsIndependent(t *testing.T) {
	table := NewTable(hourly(4))
	require.NoError(t, table.AddColumn("a", KindRaw, []float64{1, 2, 3, 4}))

	part := table.Slice(1, 3)
	col, _ := part.Column("a")
	col.Values[0] = 99

	orig, _ := table.Column("a")
	assert.Equal(t, []float64{1, 2, 3, 4}, orig.Values)
	assert.Equal(t, 2, part.Len())
}

func TestTable_Matrix(t *testing.T) {
	table := NewTable(hourly(2))
	require.NoError(t, table.AddColumn("a", KindRaw, []float64{1, 2}))
	require.NoError(t, table.AddColumn("b", KindRaw, []float64{3, 4}))
	require.NoError(t, table.SetLabels([]int{0, 1}))

	x, y := table.Matrix()

	assert.Equal(t, [][]float64{{1, 3}, {2, 4}}, x)
	assert.Equal(t, []int{0, 1}, y)
}
