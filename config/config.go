package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"featurePrep/internal/features"
	"featurePrep/internal/indicators"
	"featurePrep/internal/ports"
)

// Candle sources.
const (
	SourceCSV     = "csv"
	SourceSQLite  = "sqlite"
	SourceBinance = "binance"
)

// Config holds all application configuration.
type Config struct {
	// Data range
	Symbol   string    `yaml:"symbol" default:"ETHUSDT" validate:"required"`
	Interval string    `yaml:"interval" default:"1h" validate:"oneof=1m 3m 5m 15m 30m 1h 2h 4h 6h 8h 12h 1d 3d 1w 1M"`
	StartTS  time.Time `yaml:"start_ts"`
	EndTS    time.Time `yaml:"end_ts"`

	// Splitting and batching
	TrainingSize               float64 `yaml:"training_size" default:"0.7" validate:"gte=0,lte=1"`
	ValidationSize             float64 `yaml:"validation_size" default:"0.15" validate:"gte=0,lte=1"`
	LogisticRegressionNumBatch int     `yaml:"logistic_regression_num_batch" default:"10" validate:"gte=1"`

	// Normalization
	StandardizationWindow int     `yaml:"standardization_window" default:"20" validate:"gte=1"`
	StandardizationLimit  float64 `yaml:"standardization_limit" default:"3" validate:"gt=0"`

	// Labeling
	MACDFast   int `yaml:"macd_fast" default:"12" validate:"gte=1"`
	MACDSlow   int `yaml:"macd_slow" default:"26" validate:"gte=1"`
	MACDSignal int `yaml:"macd_signal" default:"9" validate:"gte=1"`

	// Features
	TargetFeatures     []string `yaml:"target_features" default:"[\"rsi14\",\"mfi14\",\"cci20\",\"adx14\",\"atr14\",\"obv\",\"mom10\",\"roc10\"]" validate:"dive,required"`
	CategorizeFeatures bool     `yaml:"categorize_features"`
	IsConfidential     bool     `yaml:"is_confidential"`

	// Storage
	CandleSource string `yaml:"candle_source" default:"csv" validate:"oneof=csv sqlite binance"`
	KlinesDir    string `yaml:"klines_dir" default:"./data/klines" validate:"required"`
	ArtifactsDir string `yaml:"artifacts_dir" default:"./artifacts" validate:"required"`
	DBPath       string `yaml:"db_path" default:"./data/klines.db" validate:"required"`

	// Logging
	LogLevel  string `yaml:"log_level" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `yaml:"log_format" default:"console" validate:"oneof=console json"`

	// Binance API (only needed for candle_source binance and fetch_klines)
	APIKey    string `yaml:"binance_api_key"`
	SecretKey string `yaml:"binance_api_secret"`
	IsTestnet bool   `yaml:"is_testnet"`
}

var validate = validator.New()

// Load builds the configuration from struct defaults, the YAML file at path
// (skipped when path is empty), a .env file and environment variables, in
// that order. Every problem found is reported in one ports.ErrConfigurationError.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %v: %w", err, ports.ErrConfigurationError)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %v: %w", path, err, ports.ErrConfigurationError)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %v: %w", path, err, ports.ErrConfigurationError)
		}
	}

	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	var errs []string
	errs = append(errs, applyEnv(cfg)...)
	errs = append(errs, cfg.validate()...)

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s: %w", strings.Join(errs, "; "), ports.ErrConfigurationError)
	}
	return cfg, nil
}

// applyEnv overrides fields from environment variables.
func applyEnv(cfg *Config) []string {
	var errs []string
	var err error

	cfg.Symbol = getEnv("SYMBOL", cfg.Symbol)
	cfg.Interval = getEnv("INTERVAL", cfg.Interval)
	if cfg.StartTS, err = getEnvAsTime("START_TS", cfg.StartTS); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.EndTS, err = getEnvAsTime("END_TS", cfg.EndTS); err != nil {
		errs = append(errs, err.Error())
	}

	if cfg.TrainingSize, err = getEnvAsFloat("TRAINING_SIZE", cfg.TrainingSize); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.ValidationSize, err = getEnvAsFloat("VALIDATION_SIZE", cfg.ValidationSize); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.LogisticRegressionNumBatch, err = getEnvAsInt("LOGISTIC_REGRESSION_NUM_BATCH", cfg.LogisticRegressionNumBatch); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.StandardizationWindow, err = getEnvAsInt("STANDARDIZATION_WINDOW", cfg.StandardizationWindow); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.StandardizationLimit, err = getEnvAsFloat("STANDARDIZATION_LIMIT", cfg.StandardizationLimit); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.MACDFast, err = getEnvAsInt("MACD_FAST", cfg.MACDFast); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.MACDSlow, err = getEnvAsInt("MACD_SLOW", cfg.MACDSlow); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.MACDSignal, err = getEnvAsInt("MACD_SIGNAL", cfg.MACDSignal); err != nil {
		errs = append(errs, err.Error())
	}

	if v := os.Getenv("TARGET_FEATURES"); v != "" {
		cfg.TargetFeatures = splitList(v)
	}
	if cfg.CategorizeFeatures, err = getEnvAsBool("CATEGORIZE_FEATURES", cfg.CategorizeFeatures); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.IsConfidential, err = getEnvAsBool("IS_CONFIDENTIAL", cfg.IsConfidential); err != nil {
		errs = append(errs, err.Error())
	}

	cfg.CandleSource = getEnv("CANDLE_SOURCE", cfg.CandleSource)
	cfg.KlinesDir = getEnv("KLINES_DIR", cfg.KlinesDir)
	cfg.ArtifactsDir = getEnv("ARTIFACTS_DIR", cfg.ArtifactsDir)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", cfg.LogFormat))

	cfg.APIKey = getEnv("BINANCE_API_KEY", cfg.APIKey)
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", cfg.SecretKey)
	if cfg.IsTestnet, err = getEnvAsBool("IS_TESTNET", cfg.IsTestnet); err != nil {
		errs = append(errs, err.Error())
	}
	return errs
}

// validate runs the struct tag rules and the cross-field checks.
func (c *Config) validate() []string {
	var errs []string

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return []string{err.Error()}
		}
		for _, fe := range fieldErrs {
			errs = append(errs, fieldMessage(fe))
		}
	}

	if c.StartTS.IsZero() {
		errs = append(errs, "start_ts must be set")
	}
	if c.EndTS.IsZero() {
		errs = append(errs, "end_ts must be set")
	}
	if !c.StartTS.IsZero() && !c.EndTS.IsZero() && !c.EndTS.After(c.StartTS) {
		errs = append(errs, "end_ts must be after start_ts")
	}
	if c.MACDFast >= c.MACDSlow {
		errs = append(errs, "macd_fast must be less than macd_slow")
	}
	for _, name := range c.TargetFeatures {
		if _, err := features.Lookup(name); err != nil {
			errs = append(errs, fmt.Sprintf("target_features: unknown feature %q", name))
		}
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

// MACD returns the labeling periods.
func (c *Config) MACD() indicators.MACDConfig {
	return indicators.MACDConfig{FastPeriod: c.MACDFast, SlowPeriod: c.MACDSlow, SignalPeriod: c.MACDSignal}
}

// FeatureSource returns the settings selecting how features are attached.
func (c *Config) FeatureSource() features.SourceConfig {
	return features.SourceConfig{
		Root:         c.KlinesDir,
		Symbol:       c.Symbol,
		Interval:     c.Interval,
		Targets:      c.TargetFeatures,
		Categorize:   c.CategorizeFeatures,
		Confidential: c.IsConfidential,
	}
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid integer value '%s' for key %s", valueStr, key)
	}
	return value, nil
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid float value '%s' for key %s", valueStr, key)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid boolean value '%s' for key %s", valueStr, key)
	}
	return value, nil
}

// getEnvAsTime accepts RFC 3339 timestamps or plain UTC dates.
func getEnvAsTime(key string, defaultValue time.Time) (time.Time, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if value, err := time.Parse(layout, valueStr); err == nil {
			return value.UTC(), nil
		}
	}
	return defaultValue, fmt.Errorf("invalid timestamp '%s' for key %s", valueStr, key)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
