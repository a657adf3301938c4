package dataset

import (
	"fmt"
	"math"

	"featurePrep/internal/ports"
)

// SplitBounds returns the two cut indices of a time-series split of n rows:
// floor(n*trainSize) and floor(n*(trainSize+validationSize)), clamped to n.
func SplitBounds(n int, trainSize, validationSize float64) (int, int, error) {
	for _, r := range []float64{trainSize, validationSize} {
		if math.IsNaN(r) || r < 0 || r > 1 {
			return 0, 0, fmt.Errorf("split ratios must be within [0, 1], got %v and %v: %w", trainSize, validationSize, ports.ErrInvalidArgument)
		}
	}
	i1 := min(int(math.Floor(float64(n)*trainSize)), n)
	i2 := min(int(math.Floor(float64(n)*(trainSize+validationSize))), n)
	return i1, i2, nil
}

// TimeseriesSplit partitions s into contiguous train, validation and test slices.
// The slices share the backing array of s.
func TimeseriesSplit[T any](s []T, trainSize, validationSize float64) (train, validation, test []T, err error) {
	i1, i2, err := SplitBounds(len(s), trainSize, validationSize)
	if err != nil {
		return nil, nil, nil, err
	}
	return s[:i1], s[i1:i2], s[i2:], nil
}

// BatchBounds returns k [from, to) ranges covering n rows. Sizes differ by at
// most one and the first n%k ranges hold the extra rows.
func BatchBounds(n, k int) ([][2]int, error) {
	if k <= 0 {
		return nil, fmt.Errorf("batch count must be positive, got %d: %w", k, ports.ErrInvalidArgument)
	}
	base, extra := n/k, n%k
	bounds := make([][2]int, k)
	from := 0
	for i := range bounds {
		size := base
		if i < extra {
			size++
		}
		bounds[i] = [2]int{from, from + size}
		from += size
	}
	return bounds, nil
}

// MiniBatch splits s into k contiguous batches sharing the backing array of s.
func MiniBatch[T any](s []T, k int) ([][]T, error) {
	bounds, err := BatchBounds(len(s), k)
	if err != nil {
		return nil, err
	}
	batches := make([][]T, k)
	for i, b := range bounds {
		batches[i] = s[b[0]:b[1]]
	}
	return batches, nil
}

// Split partitions the table into train, validation and test copies.
func (t *Table) Split(trainSize, validationSize float64) (train, validation, test *Table, err error) {
	i1, i2, err := SplitBounds(t.Len(), trainSize, validationSize)
	if err != nil {
		return nil, nil, nil, err
	}
	return t.Slice(0, i1), t.Slice(i1, i2), t.Slice(i2, t.Len()), nil
}

// Batches splits the table into k contiguous copies.
func (t *Table) Batches(k int) ([]*Table, error) {
	bounds, err := BatchBounds(t.Len(), k)
	if err != nil {
		return nil, err
	}
	batches := make([]*Table, k)
	for i, b := range bounds {
		batches[i] = t.Slice(b[0], b[1])
	}
	return batches, nil
}
