// Package dataset holds the labelled feature table and the helpers that
// persist, split and batch it.
package dataset

import (
	"fmt"
	"math"
	"time"

	"featurePrep/internal/domain"
	"featurePrep/internal/ports"
)

// Candle column names.
const (
	ColumnOpen   = "open"
	ColumnHigh   = "high"
	ColumnLow    = "low"
	ColumnClose  = "close"
	ColumnVolume = "volume"
)

// Reserved names that cannot be used for feature columns.
const (
	ColumnTimestamp = "timestamp"
	ColumnLabel     = "label"
)

// Column is a named float64 series tagged with its scaling kind.
type Column struct {
	Name   string
	Kind   Kind
	Values []float64
}

// Table is a set of equally long columns keyed to candle timestamps, plus
// one integer label per row. Rows stay in timestamp order.
type Table struct {
	timestamps []time.Time
	labels     []int
	columns    []*Column
	index      map[string]int
}

// NewTable creates an empty table for the given row timestamps.
// All labels start as domain.LabelNeutral.
func NewTable(timestamps []time.Time) *Table {
	ts := make([]time.Time, len(timestamps))
	copy(ts, timestamps)
	return &Table{
		timestamps: ts,
		labels:     make([]int, len(ts)),
		index:      make(map[string]int),
	}
}

// FromKlines builds a table holding the OHLCV columns of the candles.
func FromKlines(klines []*domain.Kline) *Table {
	n := len(klines)
	timestamps := make([]time.Time, n)
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	cls := make([]float64, n)
	volume := make([]float64, n)
	for i, k := range klines {
		timestamps[i] = k.OpenTime
		open[i] = k.Open
		high[i] = k.High
		low[i] = k.Low
		cls[i] = k.Close
		volume[i] = k.Volume
	}

	t := NewTable(timestamps)
	// Lengths match by construction.
	_ = t.AddColumn(ColumnOpen, KindZScoreRatio, open)
	_ = t.AddColumn(ColumnHigh, KindZScoreRatio, high)
	_ = t.AddColumn(ColumnLow, KindZScoreRatio, low)
	_ = t.AddColumn(ColumnClose, KindZScoreRatio, cls)
	_ = t.AddColumn(ColumnVolume, KindZScoreRatio, volume)
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.timestamps)
}

// Timestamps returns the row timestamps. The slice must not be modified.
func (t *Table) Timestamps() []time.Time {
	return t.timestamps
}

// Labels returns the row labels. The slice must not be modified.
func (t *Table) Labels() []int {
	return t.labels
}

// SetLabels replaces the label vector.
func (t *Table) SetLabels(labels []int) error {
	if len(labels) != t.Len() {
		return fmt.Errorf("label length %d does not match %d rows: %w", len(labels), t.Len(), ports.ErrInvalidArgument)
	}
	t.labels = make([]int, len(labels))
	copy(t.labels, labels)
	return nil
}

// AddColumn appends a column, or replaces the values and kind of an existing one.
func (t *Table) AddColumn(name string, kind Kind, values []float64) error {
	if name == "" || name == ColumnTimestamp || name == ColumnLabel {
		return fmt.Errorf("column name %q is reserved: %w", name, ports.ErrInvalidArgument)
	}
	if len(values) != t.Len() {
		return fmt.Errorf("column %q has %d values for %d rows: %w", name, len(values), t.Len(), ports.ErrInvalidArgument)
	}

	col := &Column{Name: name, Kind: kind, Values: values}
	if i, ok := t.index[name]; ok {
		t.columns[i] = col
		return nil
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, col)
	return nil
}

// Column looks a column up by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Columns returns the columns in insertion order.
func (t *Table) Columns() []*Column {
	return t.columns
}

// ColumnNames returns the column names in insertion order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Retain keeps the rows for which keep returns true, compacting every
// column in place. It returns the number of removed rows.
func (t *Table) Retain(keep func(row int) bool) int {
	n := 0
	for i := 0; i < t.Len(); i++ {
		if !keep(i) {
			continue
		}
		t.timestamps[n] = t.timestamps[i]
		t.labels[n] = t.labels[i]
		for _, c := range t.columns {
			c.Values[n] = c.Values[i]
		}
		n++
	}

	removed := t.Len() - n
	t.timestamps = t.timestamps[:n]
	t.labels = t.labels[:n]
	for _, c := range t.columns {
		c.Values = c.Values[:n]
	}
	return removed
}

// HasMissing reports whether any column holds NaN at row.
func (t *Table) HasMissing(row int) bool {
	for _, c := range t.columns {
		if math.IsNaN(c.Values[row]) {
			return true
		}
	}
	return false
}

// DropMissing removes every row holding NaN in any column.
func (t *Table) DropMissing() int {
	return t.Retain(func(row int) bool { return !t.HasMissing(row) })
}

// Slice returns a copy of rows [from, to).
func (t *Table) Slice(from, to int) *Table {
	out := NewTable(t.timestamps[from:to])
	copy(out.labels, t.labels[from:to])
	for _, c := range t.columns {
		values := make([]float64, to-from)
		copy(values, c.Values[from:to])
		out.index[c.Name] = len(out.columns)
		out.columns = append(out.columns, &Column{Name: c.Name, Kind: c.Kind, Values: values})
	}
	return out
}

// Matrix returns the rows as feature vectors in column order, with the labels.
func (t *Table) Matrix() ([][]float64, []int) {
	x := make([][]float64, t.Len())
	for i := range x {
		row := make([]float64, len(t.columns))
		for j, c := range t.columns {
			row[j] = c.Values[i]
		}
		x[i] = row
	}
	y := make([]int, t.Len())
	copy(y, t.labels)
	return x, y
}
