package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"featurePrep/config"
	"featurePrep/internal/adapters/binanceclient"
	"featurePrep/internal/adapters/csvstore"
	"featurePrep/internal/adapters/logger"
	"featurePrep/internal/adapters/sqlite"
	"featurePrep/internal/ports"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	skipSQLite := flag.Bool("skip-sqlite", false, "only write the CSV store")
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

	// 3. Initialize Exchange Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	// 4. Initialize Stores
	store, err := csvstore.NewStore(cfg.KlinesDir, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize CSV store")
		log.Fatalf("FATAL: Failed to initialize CSV store: %v", err)
	}
	writers := []ports.CandleWriter{store}

	if !*skipSQLite {
		repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
		if err != nil {
			appLogger.Error(ctx, err, "FATAL: Failed to initialize database repository")
			log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
		}
		defer func() {
			if err := repo.Close(); err != nil {
				appLogger.Error(context.Background(), err, "Error closing database repository")
			}
		}()
		writers = append(writers, repo)
	}

	// 5. Download and store
	fields := map[string]interface{}{
		"symbol":   cfg.Symbol,
		"interval": cfg.Interval,
		"start":    cfg.StartTS,
		"end":      cfg.EndTS,
	}
	appLogger.Info(ctx, "Fetching klines", fields)
	klines, err := binanceClient.ReadCandles(ctx, cfg.Symbol, cfg.Interval, cfg.StartTS, cfg.EndTS)
	if err != nil {
		appLogger.Error(ctx, err, "Error fetching klines", fields)
		log.Fatalf("Error fetching klines: %v", err)
	}

	for _, w := range writers {
		if err := w.WriteCandles(ctx, klines); err != nil {
			appLogger.Error(ctx, err, "Error storing klines")
			log.Fatalf("Error storing klines: %v", err)
		}
	}
	appLogger.Info(ctx, "Klines stored", map[string]interface{}{
		"count": len(klines),
		"csv":   store.Path(cfg.Symbol, cfg.Interval),
	})
}
