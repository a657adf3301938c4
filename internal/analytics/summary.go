package analytics

import (
	"sort"
	"time"

	"featurePrep/internal/dataset"
	"featurePrep/internal/domain"
)

// LabelMetrics summarizes the encoded labels of a prepared table.
type LabelMetrics struct {
	// Basic Metrics
	Rows        int
	Correct     int
	Incorrect   int
	CorrectRate float64

	// Sequence Metrics
	MaxConsecutiveCorrect   int
	MaxConsecutiveIncorrect int
	Start                   time.Time
	End                     time.Time
	MonthlyRows             map[string]int
}

// Summarize counts classes, label streaks and rows per month.
// Labels are expected in the domain.ClassCorrect / domain.ClassIncorrect encoding.
func Summarize(t *dataset.Table) *LabelMetrics {
	metrics := &LabelMetrics{
		Rows:        t.Len(),
		MonthlyRows: make(map[string]int),
	}
	if t.Len() == 0 {
		return metrics
	}

	timestamps := t.Timestamps()
	metrics.Start = timestamps[0]
	metrics.End = timestamps[len(timestamps)-1]

	streak, prev := 0, -1
	for i, label := range t.Labels() {
		switch label {
		case domain.ClassCorrect:
			metrics.Correct++
		case domain.ClassIncorrect:
			metrics.Incorrect++
		}

		if label == prev {
			streak++
		} else {
			streak = 1
			prev = label
		}
		if label == domain.ClassCorrect && streak > metrics.MaxConsecutiveCorrect {
			metrics.MaxConsecutiveCorrect = streak
		}
		if label == domain.ClassIncorrect && streak > metrics.MaxConsecutiveIncorrect {
			metrics.MaxConsecutiveIncorrect = streak
		}

		metrics.MonthlyRows[timestamps[i].UTC().Format("2006-01")]++
	}

	metrics.CorrectRate = float64(metrics.Correct) / float64(metrics.Rows)
	return metrics
}

// Fields flattens the metrics for structured logging.
func (m *LabelMetrics) Fields() map[string]interface{} {
	return map[string]interface{}{
		"rows":                      m.Rows,
		"correct":                   m.Correct,
		"incorrect":                 m.Incorrect,
		"correct_rate":              m.CorrectRate,
		"max_consecutive_correct":   m.MaxConsecutiveCorrect,
		"max_consecutive_incorrect": m.MaxConsecutiveIncorrect,
		"months":                    len(m.MonthlyRows),
	}
}

// GetMonthlyRows returns the row counts per month in calendar order.
func (m *LabelMetrics) GetMonthlyRows() []MonthlyCount {
	counts := make([]MonthlyCount, 0, len(m.MonthlyRows))
	for month, rows := range m.MonthlyRows {
		date, _ := time.Parse("2006-01", month)
		counts = append(counts, MonthlyCount{
			Month: date,
			Rows:  rows,
		})
	}
	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Month.Before(counts[j].Month)
	})
	return counts
}

// MonthlyCount is the number of rows falling in one calendar month.
type MonthlyCount struct {
	Month time.Time
	Rows  int
}
