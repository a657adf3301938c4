package features

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"featurePrep/internal/dataset"
	"featurePrep/internal/ports"
)

// FileName is the name of the cached feature table inside a symbol/interval directory.
const FileName = "features.csv"

// Path returns the cached feature file for symbol and interval under root.
func Path(root, symbol, interval string) string {
	return filepath.Join(root, symbol, interval, FileName)
}

// Source attaches feature columns to a labelled candle table.
type Source interface {
	Name() string
	AttachFeatures(ctx context.Context, t *dataset.Table) error
}

// SourceConfig selects and parameterizes a Source.
type SourceConfig struct {
	Root         string
	Symbol       string
	Interval     string
	Targets      []string
	Categorize   bool
	Confidential bool
}

// NewSource returns LoadCachedFeatures when the run is confidential and
// ComputeFeatures otherwise.
func NewSource(cfg SourceConfig, logger ports.Logger) (Source, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	path := Path(cfg.Root, cfg.Symbol, cfg.Interval)
	if cfg.Confidential {
		if len(cfg.Targets) == 0 {
			return nil, fmt.Errorf("no target features to load: %w", ports.ErrInvalidArgument)
		}
		return &LoadCachedFeatures{path: path, targets: cfg.Targets, logger: logger}, nil
	}
	builder, err := NewBuilder(cfg.Targets, cfg.Categorize)
	if err != nil {
		return nil, err
	}
	return &ComputeFeatures{builder: builder, path: path, logger: logger}, nil
}

// ComputeFeatures builds features from the candles and caches the full table.
type ComputeFeatures struct {
	builder *Builder
	path    string
	logger  ports.Logger
}

// NewComputeFeatures creates a compute strategy that caches to path.
func NewComputeFeatures(builder *Builder, path string, logger ports.Logger) *ComputeFeatures {
	return &ComputeFeatures{builder: builder, path: path, logger: logger}
}

// Name identifies the strategy in logs.
func (c *ComputeFeatures) Name() string { return "compute" }

// AttachFeatures builds the target features and writes the table to the cache file.
func (c *ComputeFeatures) AttachFeatures(ctx context.Context, t *dataset.Table) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrContextCanceled, err)
	}
	if err := c.builder.Build(t); err != nil {
		return fmt.Errorf("failed to build features: %w", err)
	}
	if err := dataset.WriteCSV(c.path, t); err != nil {
		return fmt.Errorf("failed to cache features: %w", err)
	}
	c.logger.Info(ctx, "Features computed", map[string]interface{}{
		"features": c.builder.Targets(),
		"rows":     t.Len(),
		"path":     c.path,
	})
	return nil
}

// LoadCachedFeatures joins previously cached feature columns onto the table by timestamp.
type LoadCachedFeatures struct {
	path    string
	targets []string
	logger  ports.Logger
}

// NewLoadCachedFeatures creates a load strategy reading targets from path.
func NewLoadCachedFeatures(path string, targets []string, logger ports.Logger) *LoadCachedFeatures {
	return &LoadCachedFeatures{path: path, targets: targets, logger: logger}
}

// Name identifies the strategy in logs.
func (l *LoadCachedFeatures) Name() string { return "load_cached" }

// AttachFeatures reads the cache file and copies the target columns onto the
// table. Rows missing from the cache get NaN.
func (l *LoadCachedFeatures) AttachFeatures(ctx context.Context, t *dataset.Table) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrContextCanceled, err)
	}
	cached, err := dataset.ReadCSV(l.path)
	if err != nil {
		return fmt.Errorf("failed to load cached features: %w", err)
	}

	rowOf := make(map[int64]int, cached.Len())
	for i, ts := range cached.Timestamps() {
		rowOf[ts.UnixNano()] = i
	}

	missing := 0
	for _, ts := range t.Timestamps() {
		if _, ok := rowOf[ts.UnixNano()]; !ok {
			missing++
		}
	}

	for _, name := range l.targets {
		col, ok := cached.Column(name)
		if !ok {
			return fmt.Errorf("cached features in %s have no column %q: %w", l.path, name, ports.ErrSchemaMismatch)
		}
		values := make([]float64, t.Len())
		for i, ts := range t.Timestamps() {
			row, ok := rowOf[ts.UnixNano()]
			if !ok {
				values[i] = math.NaN()
				continue
			}
			values[i] = col.Values[row]
		}
		if err := t.AddColumn(name, col.Kind, values); err != nil {
			return fmt.Errorf("failed to attach cached feature %s: %w", name, err)
		}
	}

	if missing > 0 {
		l.logger.Warn(ctx, "Rows missing from feature cache", map[string]interface{}{
			"missing": missing,
			"rows":    t.Len(),
		})
	}
	l.logger.Info(ctx, "Cached features loaded", map[string]interface{}{
		"features": l.targets,
		"rows":     t.Len(),
		"path":     l.path,
	})
	return nil
}
