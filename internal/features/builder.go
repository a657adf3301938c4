package features

import (
	"fmt"
	"math"

	"featurePrep/internal/dataset"
	"featurePrep/internal/ports"
)

// Builder appends a fixed list of features to candle tables.
type Builder struct {
	definitions []Definition
	categorize  bool
}

// NewBuilder resolves the target feature names. With categorize set, every
// feature is bucketed and stored as dataset.KindCategorical.
func NewBuilder(targets []string, categorize bool) (*Builder, error) {
	seen := make(map[string]bool, len(targets))
	defs := make([]Definition, 0, len(targets))
	for _, name := range targets {
		if seen[name] {
			return nil, fmt.Errorf("feature %q listed twice: %w", name, ports.ErrInvalidArgument)
		}
		seen[name] = true
		def, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return &Builder{definitions: defs, categorize: categorize}, nil
}

// Targets returns the feature names in build order.
func (b *Builder) Targets() []string {
	names := make([]string, len(b.definitions))
	for i, d := range b.definitions {
		names[i] = d.Name
	}
	return names
}

// Build computes every target feature from the table's candle columns and
// adds it as a column. Rows inside a feature's lookback are NaN.
func (b *Builder) Build(t *dataset.Table) error {
	s, err := seriesOf(t)
	if err != nil {
		return err
	}

	for _, def := range b.definitions {
		values := nanValues(t.Len())
		if t.Len() > def.Lookback {
			values = def.Compute(s)
			for i := 0; i < def.Lookback; i++ {
				values[i] = math.NaN()
			}
		}

		kind := def.Kind
		if b.categorize {
			values = def.Categorize(values)
			kind = dataset.KindCategorical
		}
		if err := t.AddColumn(def.Name, kind, values); err != nil {
			return fmt.Errorf("failed to add feature %s: %w", def.Name, err)
		}
	}
	return nil
}

func seriesOf(t *dataset.Table) (Series, error) {
	cols := make(map[string][]float64, 5)
	for _, name := range []string{dataset.ColumnOpen, dataset.ColumnHigh, dataset.ColumnLow, dataset.ColumnClose, dataset.ColumnVolume} {
		col, ok := t.Column(name)
		if !ok {
			return Series{}, fmt.Errorf("table has no %q column: %w", name, ports.ErrInvalidArgument)
		}
		cols[name] = col.Values
	}
	return Series{
		Open:   cols[dataset.ColumnOpen],
		High:   cols[dataset.ColumnHigh],
		Low:    cols[dataset.ColumnLow],
		Close:  cols[dataset.ColumnClose],
		Volume: cols[dataset.ColumnVolume],
	}, nil
}
