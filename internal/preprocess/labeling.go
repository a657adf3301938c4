// Package preprocess labels candle tables and scales their feature columns.
package preprocess

import (
	"fmt"
	"math"

	"featurePrep/internal/dataset"
	"featurePrep/internal/domain"
	"featurePrep/internal/indicators"
	"featurePrep/internal/ports"
)

// MACDLabels labels every close price by comparing MACD with its signal line.
// Rows where either line is still warming up are neutral.
func MACDLabels(closes []float64, config indicators.MACDConfig) ([]domain.Label, error) {
	series, err := indicators.MACD(closes, config)
	if err != nil {
		return nil, err
	}

	labels := make([]domain.Label, len(closes))
	for i := range closes {
		m, s := series.MACD[i], series.Signal[i]
		switch {
		case math.IsNaN(m) || math.IsNaN(s):
			labels[i] = domain.LabelNeutral
		case m > s:
			labels[i] = domain.LabelBullish
		case m < s:
			labels[i] = domain.LabelBearish
		default:
			labels[i] = domain.LabelNeutral
		}
	}
	return labels, nil
}

// LabelTable computes MACD labels from the close column and stores them on the table.
func LabelTable(t *dataset.Table, config indicators.MACDConfig) error {
	closeCol, ok := t.Column(dataset.ColumnClose)
	if !ok {
		return fmt.Errorf("table has no %q column: %w", dataset.ColumnClose, ports.ErrInvalidArgument)
	}

	labels, err := MACDLabels(closeCol.Values, config)
	if err != nil {
		return fmt.Errorf("failed to label table: %w", err)
	}

	raw := make([]int, len(labels))
	for i, l := range labels {
		raw[i] = int(l)
	}
	return t.SetLabels(raw)
}

// KeepDecided drops rows whose label is neither bullish nor bearish and
// re-encodes the rest as domain.ClassCorrect / domain.ClassIncorrect.
// It returns the number of removed rows.
func KeepDecided(t *dataset.Table) int {
	labels := t.Labels()
	removed := t.Retain(func(row int) bool {
		return domain.Label(labels[row]).IsDecided()
	})

	encoded := make([]int, t.Len())
	for i, l := range t.Labels() {
		encoded[i], _ = domain.Label(l).Encode()
	}
	// Lengths match after Retain.
	_ = t.SetLabels(encoded)
	return removed
}
