package app

import (
	"context"
	"fmt"

	"featurePrep/config"
	"featurePrep/internal/dataset"
	"featurePrep/internal/indicators"
	"featurePrep/internal/ports"
	"featurePrep/internal/preprocess"
)

// FeatureSource attaches feature columns to a labelled candle table.
type FeatureSource interface {
	Name() string
	AttachFeatures(ctx context.Context, t *dataset.Table) error
}

// Preprocessor turns a candle range into a labelled, scaled feature table.
type Preprocessor struct {
	cfg        *config.Config
	logger     ports.Logger
	candles    ports.CandleReader
	features   FeatureSource
	macd       indicators.MACDConfig
	normalizer preprocess.Normalizer
}

// NewPreprocessor creates a preprocessor from its dependencies.
func NewPreprocessor(
	cfg *config.Config,
	logger ports.Logger,
	candles ports.CandleReader,
	features FeatureSource,
) (*Preprocessor, error) {
	if cfg == nil || logger == nil || candles == nil || features == nil {
		return nil, fmt.Errorf("missing required dependencies for Preprocessor: %w", ports.ErrInvalidArgument)
	}

	macd := cfg.MACD()
	if err := macd.Validate(); err != nil {
		return nil, fmt.Errorf("invalid labeling configuration: %w", err)
	}
	normalizer := preprocess.Normalizer{Window: cfg.StandardizationWindow, Limit: cfg.StandardizationLimit}
	if err := normalizer.Validate(); err != nil {
		return nil, fmt.Errorf("invalid normalization configuration: %w", err)
	}

	return &Preprocessor{
		cfg:        cfg,
		logger:     logger,
		candles:    candles,
		features:   features,
		macd:       macd,
		normalizer: normalizer,
	}, nil
}

// PrepareFeatures reads the configured candle range, labels it, attaches the
// features, normalizes continuous columns and keeps only decided rows with
// labels re-encoded to domain.ClassCorrect / domain.ClassIncorrect.
func (p *Preprocessor) PrepareFeatures(ctx context.Context) (*dataset.Table, error) {
	fields := map[string]interface{}{
		"symbol":   p.cfg.Symbol,
		"interval": p.cfg.Interval,
		"start":    p.cfg.StartTS,
		"end":      p.cfg.EndTS,
	}
	p.logger.Info(ctx, "Preparing features", fields)

	klines, err := p.candles.ReadCandles(ctx, p.cfg.Symbol, p.cfg.Interval, p.cfg.StartTS, p.cfg.EndTS)
	if err != nil {
		p.logger.Error(ctx, err, "Failed to read candles", fields)
		return nil, fmt.Errorf("failed to read candles: %w", err)
	}
	if len(klines) == 0 {
		return nil, fmt.Errorf("no candles for %s %s: %w", p.cfg.Symbol, p.cfg.Interval, ports.ErrNotFound)
	}

	table := dataset.FromKlines(klines)
	if err := preprocess.LabelTable(table, p.macd); err != nil {
		return nil, fmt.Errorf("failed to label candles: %w", err)
	}
	p.logger.Debug(ctx, "Candles labelled", map[string]interface{}{"rows": table.Len()})

	if err := p.features.AttachFeatures(ctx, table); err != nil {
		p.logger.Error(ctx, err, "Failed to attach features", map[string]interface{}{"source": p.features.Name()})
		return nil, fmt.Errorf("failed to attach features: %w", err)
	}

	if !p.cfg.CategorizeFeatures {
		dropped, err := p.normalizer.Normalize(table)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize features: %w", err)
		}
		p.logger.Debug(ctx, "Features normalized", map[string]interface{}{
			"dropped": dropped,
			"rows":    table.Len(),
		})
	}

	undecided := preprocess.KeepDecided(table)
	missing := table.DropMissing()

	p.logger.Info(ctx, "Features prepared", map[string]interface{}{
		"candles":   len(klines),
		"rows":      table.Len(),
		"columns":   len(table.Columns()),
		"undecided": undecided,
		"missing":   missing,
		"source":    p.features.Name(),
	})
	return table, nil
}

// TimeseriesSplit partitions the table with the configured training and
// validation ratios.
func (p *Preprocessor) TimeseriesSplit(t *dataset.Table) (train, validation, test *dataset.Table, err error) {
	train, validation, test, err = t.Split(p.cfg.TrainingSize, p.cfg.ValidationSize)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to split features: %w", err)
	}
	return train, validation, test, nil
}

// MiniBatch splits the table into the configured number of batches.
func (p *Preprocessor) MiniBatch(t *dataset.Table) ([]*dataset.Table, error) {
	batches, err := t.Batches(p.cfg.LogisticRegressionNumBatch)
	if err != nil {
		return nil, fmt.Errorf("failed to batch features: %w", err)
	}
	return batches, nil
}
