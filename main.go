package main

import (
	"context"
	"flag"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"os/signal"
	"syscall"
	"time"

	"featurePrep/config"
	"featurePrep/internal/adapters/binanceclient"
	"featurePrep/internal/adapters/csvstore"
	"featurePrep/internal/adapters/logger"
	"featurePrep/internal/adapters/sqlite"
	"featurePrep/internal/analytics"
	"featurePrep/internal/app"
	"featurePrep/internal/dataset"
	"featurePrep/internal/features"
	"featurePrep/internal/ports"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel})

	// 3. Initialize Candle Source
	candles, closeCandles, err := newCandleReader(cfg, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize candle source")
		log.Fatalf("FATAL: Failed to initialize candle source: %v", err)
	}
	defer func() {
		if err := closeCandles(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing candle source")
		}
	}()

	// 4. Initialize Feature Source
	featureSource, err := features.NewSource(cfg.FeatureSource(), appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize feature source")
		log.Fatalf("FATAL: Failed to initialize feature source: %v", err)
	}
	appLogger.Info(ctx, "Feature source initialized", map[string]interface{}{"source": featureSource.Name()})

	// 5. Initialize Preprocessor
	preprocessor, err := app.NewPreprocessor(cfg, appLogger, candles, featureSource)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize preprocessor")
		log.Fatalf("FATAL: Failed to initialize preprocessor: %v", err)
	}

	// 6. Run the pipeline
	table, err := preprocessor.PrepareFeatures(ctx)
	if err != nil {
		appLogger.Error(ctx, err, "Feature preparation failed")
		log.Fatalf("FATAL: Feature preparation failed: %v", err)
	}

	train, validation, test, err := preprocessor.TimeseriesSplit(table)
	if err != nil {
		appLogger.Error(ctx, err, "Split failed")
		log.Fatalf("FATAL: Split failed: %v", err)
	}

	batches, err := preprocessor.MiniBatch(train)
	if err != nil {
		appLogger.Error(ctx, err, "Batching failed")
		log.Fatalf("FATAL: Batching failed: %v", err)
	}
	sizes := make([]int, len(batches))
	for i, b := range batches {
		sizes[i] = b.Len()
	}

	for name, part := range map[string]*dataset.Table{"train": train, "validation": validation, "test": test} {
		fields := analytics.Summarize(part).Fields()
		fields["split"] = name
		appLogger.Info(ctx, "Split summary", fields)
	}

	dir := app.ArtifactDir(cfg.ArtifactsDir, time.Now())
	paths, err := app.WriteSplits(dir, train, validation, test)
	if err != nil {
		appLogger.Error(ctx, err, "Failed to write artifacts")
		log.Fatalf("FATAL: Failed to write artifacts: %v", err)
	}

	appLogger.Info(ctx, "Preprocessing finished", map[string]interface{}{
		"train":       train.Len(),
		"validation":  validation.Len(),
		"test":        test.Len(),
		"batch_sizes": sizes,
		"artifacts":   paths,
	})
}

// newCandleReader builds the reader selected by cfg.CandleSource and a func
// releasing it.
func newCandleReader(cfg *config.Config, appLogger ports.Logger) (ports.CandleReader, func() error, error) {
	noop := func() error { return nil }

	switch cfg.CandleSource {
	case config.SourceSQLite:
		repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	case config.SourceBinance:
		client, err := binanceclient.New(binanceclient.Config{
			APIKey:     cfg.APIKey,
			SecretKey:  cfg.SecretKey,
			UseTestnet: cfg.IsTestnet,
			Logger:     appLogger,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, noop, nil
	default:
		store, err := csvstore.NewStore(cfg.KlinesDir, appLogger)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil
	}
}
