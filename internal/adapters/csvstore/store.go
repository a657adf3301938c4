// Package csvstore keeps candles in one CSV file per symbol and interval.
package csvstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"featurePrep/internal/domain"
	"featurePrep/internal/ports"
)

// FileName is the candle file inside <root>/<symbol>/<interval>/.
const FileName = "candles.csv"

var header = []string{"open_time", "close_time", "symbol", "interval", "open", "high", "low", "close", "volume"}

// Store implements ports.CandleReader and ports.CandleWriter on CSV files.
type Store struct {
	root   string
	logger ports.Logger
}

// NewStore creates a store rooted at dir.
func NewStore(dir string, logger ports.Logger) (*Store, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if dir == "" {
		return nil, fmt.Errorf("klines directory is required: %w", ports.ErrConfigurationError)
	}
	return &Store{root: dir, logger: logger}, nil
}

// Path returns the candle file for symbol and interval.
func (s *Store) Path(symbol, interval string) string {
	return filepath.Join(s.root, symbol, interval, FileName)
}

// ReadCandles returns the candles with open time in [start, end], ascending.
// Duplicate open times keep the first row read.
func (s *Store) ReadCandles(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Kline, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrContextCanceled, err)
	}
	path := s.Path(symbol, interval)
	all, err := ReadKlinesFromCSV(path)
	if err != nil {
		return nil, err
	}

	klines := make([]*domain.Kline, 0, len(all))
	for _, k := range all {
		if k.OpenTime.Before(start) || k.OpenTime.After(end) {
			continue
		}
		klines = append(klines, k)
	}

	klines, dups := sortUnique(klines)
	if dups > 0 {
		s.logger.Warn(ctx, "Duplicate candles ignored", map[string]interface{}{
			"path":       path,
			"duplicates": dups,
		})
	}
	if len(klines) == 0 {
		return nil, fmt.Errorf("no %s %s candles between %s and %s: %w",
			symbol, interval, start.Format(time.RFC3339), end.Format(time.RFC3339), ports.ErrNotFound)
	}

	s.logger.Debug(ctx, "Candles read from CSV", map[string]interface{}{
		"path": path,
		"rows": len(klines),
	})
	return klines, nil
}

// WriteCandles merges the candles into their symbol/interval files. A candle
// already stored under the same open time is replaced.
func (s *Store) WriteCandles(ctx context.Context, klines []*domain.Kline) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrContextCanceled, err)
	}

	groups := make(map[string][]*domain.Kline)
	for _, k := range klines {
		path := s.Path(k.Symbol, k.Interval)
		groups[path] = append(groups[path], k)
	}

	for path, group := range groups {
		existing, err := ReadKlinesFromCSV(path)
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			return err
		}
		// New candles go first so sortUnique keeps them over stored ones.
		merged, _ := sortUnique(append(append([]*domain.Kline{}, group...), existing...))
		if err := WriteKlinesToCSV(merged, path); err != nil {
			return err
		}
		s.logger.Info(ctx, "Candles written to CSV", map[string]interface{}{
			"path":  path,
			"added": len(group),
			"total": len(merged),
		})
	}
	return nil
}

// sortUnique orders klines by open time and removes later duplicates.
func sortUnique(klines []*domain.Kline) ([]*domain.Kline, int) {
	sort.SliceStable(klines, func(i, j int) bool {
		return klines[i].OpenTime.Before(klines[j].OpenTime)
	})
	out := klines[:0]
	dups := 0
	for _, k := range klines {
		if len(out) > 0 && out[len(out)-1].OpenTime.Equal(k.OpenTime) {
			dups++
			continue
		}
		out = append(out, k)
	}
	return out, dups
}

// WriteKlinesToCSV writes klines to filename, creating parent directories.
func WriteKlinesToCSV(klines []*domain.Kline, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", filename, err)
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", filename, err)
	}
	for _, k := range klines {
		if err := writer.Write([]string{
			k.OpenTime.UTC().Format(time.RFC3339Nano),
			k.CloseTime.UTC().Format(time.RFC3339Nano),
			k.Symbol,
			k.Interval,
			strconv.FormatFloat(k.Open, 'f', -1, 64),
			strconv.FormatFloat(k.High, 'f', -1, 64),
			strconv.FormatFloat(k.Low, 'f', -1, 64),
			strconv.FormatFloat(k.Close, 'f', -1, 64),
			strconv.FormatFloat(k.Volume, 'f', -1, 64),
		}); err != nil {
			return fmt.Errorf("failed to write %s: %w", filename, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", filename, err)
	}
	return file.Close()
}

// ReadKlinesFromCSV reads every kline stored in filename in file order.
func ReadKlinesFromCSV(filename string) ([]*domain.Kline, error) {
	file, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("candle file %s: %w", filename, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(header)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %v: %w", filename, err, ports.ErrMalformedData)
	}
	if len(records) == 0 || records[0][0] != header[0] {
		return nil, fmt.Errorf("%s has no candle header: %w", filename, ports.ErrMalformedData)
	}

	klines := make([]*domain.Kline, 0, len(records)-1)
	for i, rec := range records[1:] {
		k, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %v: %w", filename, i+2, err, ports.ErrMalformedData)
		}
		klines = append(klines, k)
	}
	return klines, nil
}

func parseRecord(rec []string) (*domain.Kline, error) {
	openTime, err := time.Parse(time.RFC3339Nano, rec[0])
	if err != nil {
		return nil, fmt.Errorf("invalid open_time %q", rec[0])
	}
	closeTime, err := time.Parse(time.RFC3339Nano, rec[1])
	if err != nil {
		return nil, fmt.Errorf("invalid close_time %q", rec[1])
	}

	var prices [5]float64
	for j := range prices {
		v, err := strconv.ParseFloat(rec[4+j], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q", header[4+j], rec[4+j])
		}
		prices[j] = v
	}

	return &domain.Kline{
		OpenTime:  openTime,
		CloseTime: closeTime,
		Symbol:    rec[2],
		Interval:  rec[3],
		Open:      prices[0],
		High:      prices[1],
		Low:       prices[2],
		Close:     prices[3],
		Volume:    prices[4],
		IsFinal:   true,
	}, nil
}
