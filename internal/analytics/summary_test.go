package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featurePrep/internal/dataset"
)

func TestSummarize(t *testing.T) {
	ts := []time.Time{
		time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	table := dataset.NewTable(ts)
	require.NoError(t, table.SetLabels([]int{0, 0, 1, 1, 1, 0}))

	m := Summarize(table)

	assert.Equal(t, 6, m.Rows)
	assert.Equal(t, 3, m.Correct)
	assert.Equal(t, 3, m.Incorrect)
	assert.InDelta(t, 0.5, m.CorrectRate, 1e-12)
	assert.Equal(t, 2, m.MaxConsecutiveCorrect)
	assert.Equal(t, 3, m.MaxConsecutiveIncorrect)
	assert.True(t, ts[0].Equal(m.Start))
	assert.True(t, ts[5].Equal(m.End))

	monthly := m.GetMonthlyRows()
	require.Len(t, monthly, 3)
	assert.Equal(t, []int{2, 3, 1}, []int{monthly[0].Rows, monthly[1].Rows, monthly[2].Rows})
	assert.Equal(t, time.February, monthly[1].Month.Month())

	assert.Equal(t, 6, m.Fields()["rows"])
}

func TestSummarize_Empty(t *testing.T) {
	m := Summarize(dataset.NewTable(nil))

	assert.Equal(t, 0, m.Rows)
	assert.Zero(t, m.CorrectRate)
	assert.Empty(t, m.GetMonthlyRows())
}
