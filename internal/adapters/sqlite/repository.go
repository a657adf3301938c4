package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"featurePrep/internal/domain"
	"featurePrep/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.CandleReader and ports.CandleWriter using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository opens (or creates) the candle database and its schema.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/klines.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %v: %w", dbPath, err, ports.ErrDBConnection)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %v: %w", dbPath, err, ports.ErrDBConnection)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// One writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	return repo, nil
}

// initializeSchema creates the klines table if it doesn't exist.
// Times are stored as Unix milliseconds.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS klines (
		symbol TEXT NOT NULL,
		interval TEXT NOT NULL,
		open_time INTEGER NOT NULL,
		close_time INTEGER NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume REAL NOT NULL,
		is_final INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (symbol, interval, open_time)
	);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %v: %w", err, ports.ErrQueryFailed)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// SaveKlines upserts the klines in a single transaction.
func (r *Repository) SaveKlines(ctx context.Context, klines []*domain.Kline) (err error) {
	if len(klines) == 0 {
		return nil
	}
	const query = `
	INSERT INTO klines (symbol, interval, open_time, close_time, open, high, low, close, volume, is_final)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (symbol, interval, open_time) DO UPDATE SET
		close_time = excluded.close_time,
		open = excluded.open,
		high = excluded.high,
		low = excluded.low,
		close = excluded.close,
		volume = excluded.volume,
		is_final = excluded.is_final`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin kline transaction: %v: %w", err, ports.ErrDBConnection)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare kline upsert: %v: %w", err, ports.ErrQueryFailed)
	}
	defer stmt.Close()

	for _, k := range klines {
		if _, err = stmt.ExecContext(ctx,
			k.Symbol, k.Interval, k.OpenTime.UnixMilli(), k.CloseTime.UnixMilli(),
			k.Open, k.High, k.Low, k.Close, k.Volume, k.IsFinal); err != nil {
			return fmt.Errorf("failed to upsert kline %s %s at %s: %v: %w",
				k.Symbol, k.Interval, k.OpenTime.Format(time.RFC3339), err, ports.ErrQueryFailed)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit klines: %v: %w", err, ports.ErrQueryFailed)
	}
	r.logger.Debug(ctx, "Klines saved", map[string]interface{}{"count": len(klines)})
	return nil
}

// WriteCandles satisfies ports.CandleWriter.
func (r *Repository) WriteCandles(ctx context.Context, klines []*domain.Kline) error {
	return r.SaveKlines(ctx, klines)
}

// ReadCandles returns the klines with open time in [start, end], ascending.
func (r *Repository) ReadCandles(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Kline, error) {
	const query = `
	SELECT symbol, interval, open_time, close_time, open, high, low, close, volume, is_final
	FROM klines
	WHERE symbol = ? AND interval = ? AND open_time >= ? AND open_time <= ?
	ORDER BY open_time ASC`

	rows, err := r.db.QueryContext(ctx, query, symbol, interval, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to query klines for %s %s: %v: %w", symbol, interval, err, ports.ErrQueryFailed)
	}
	defer rows.Close()

	var klines []*domain.Kline
	for rows.Next() {
		k, err := scanKline(rows)
		if err != nil {
			return nil, err
		}
		klines = append(klines, k)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating kline rows: %v: %w", err, ports.ErrQueryFailed)
	}
	if len(klines) == 0 {
		return nil, fmt.Errorf("no %s %s klines between %s and %s: %w",
			symbol, interval, start.Format(time.RFC3339), end.Format(time.RFC3339), ports.ErrNotFound)
	}
	return klines, nil
}

// CountKlines returns the number of stored klines for symbol and interval.
func (r *Repository) CountKlines(ctx context.Context, symbol, interval string) (int, error) {
	const query = `SELECT COUNT(*) FROM klines WHERE symbol = ? AND interval = ?`
	var count int
	if err := r.db.QueryRowContext(ctx, query, symbol, interval).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count klines for %s %s: %v: %w", symbol, interval, err, ports.ErrQueryFailed)
	}
	return count, nil
}

// LatestOpenTime returns the open time of the newest stored kline.
func (r *Repository) LatestOpenTime(ctx context.Context, symbol, interval string) (time.Time, error) {
	const query = `SELECT MAX(open_time) FROM klines WHERE symbol = ? AND interval = ?`
	var latest sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, symbol, interval).Scan(&latest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("failed to query latest kline for %s %s: %v: %w", symbol, interval, err, ports.ErrQueryFailed)
	}
	if !latest.Valid {
		return time.Time{}, fmt.Errorf("no %s %s klines stored: %w", symbol, interval, ports.ErrNotFound)
	}
	return time.UnixMilli(latest.Int64).UTC(), nil
}

// --- Helper Scan Functions ---

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanKline(s scanner) (*domain.Kline, error) {
	var (
		k                   domain.Kline
		openTime, closeTime int64
	)
	err := s.Scan(&k.Symbol, &k.Interval, &openTime, &closeTime,
		&k.Open, &k.High, &k.Low, &k.Close, &k.Volume, &k.IsFinal)
	if err != nil {
		return nil, fmt.Errorf("failed to scan kline row: %v: %w", err, ports.ErrQueryFailed)
	}
	k.OpenTime = time.UnixMilli(openTime).UTC()
	k.CloseTime = time.UnixMilli(closeTime).UTC()
	return &k, nil
}
