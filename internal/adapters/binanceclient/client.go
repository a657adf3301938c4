package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"featurePrep/internal/domain"
	"featurePrep/internal/ports"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"
)

const (
	// Base URLs
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"

	// maxKlinesPerRequest is the largest page the futures klines endpoint serves.
	maxKlinesPerRequest = 1500
)

// Client downloads historical candles from Binance USD-M futures.
// It implements ports.CandleReader.
type Client struct {
	futuresClient *futures.Client
	logger        ports.Logger
	pageLimit     int
	now           func() time.Time
}

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	Logger     ports.Logger
	PageLimit  int // Klines per request, capped at 1500
}

// New creates a new Binance client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		cfg.Logger.Debug(context.Background(), "No Binance API keys configured; using public endpoints only")
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)
	if cfg.UseTestnet {
		client.BaseURL = baseURLTestnet
	} else {
		client.BaseURL = baseURLProduction
	}
	cfg.Logger.Info(context.Background(), "Binance client configured", map[string]interface{}{"baseURL": client.BaseURL})

	limit := cfg.PageLimit
	if limit <= 0 || limit > maxKlinesPerRequest {
		limit = maxKlinesPerRequest
	}

	return &Client{
		futuresClient: client,
		logger:        cfg.Logger,
		pageLimit:     limit,
		now:           time.Now,
	}, nil
}

// classifyAPIError maps a Binance API error code onto a ports error.
func classifyAPIError(code int64) error {
	switch code {
	case -1003: // Too many requests
		return ports.ErrRateLimited
	case -1001, -1007: // Disconnected, timeout waiting for backend
		return ports.ErrExchangeUnavailable
	case -1021: // Timestamp for this request is outside of the recvWindow
		return ports.ErrTimeout
	case -1022, -2014, -2015: // Bad signature, API-key format invalid, key rejected
		return ports.ErrAuthenticationFailed
	case -1100, -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1120, -1121, -1130: // Parameter errors, bad interval or symbol
		return ports.ErrInvalidArgument
	default:
		return ports.ErrUnknown
	}
}

// handleError translates Binance API and transport errors into ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return fmt.Errorf("%s failed: %w: %w", operation, classifyAPIError(apiErr.Code), err)
	}

	var finalErr error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	case strings.Contains(err.Error(), "use of closed network connection"),
		strings.Contains(err.Error(), "connection refused"),
		strings.Contains(err.Error(), "connection reset by peer"):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	case errors.Is(err, ports.ErrMalformedData):
		finalErr = fmt.Errorf("%s failed: %w", operation, err)
	default:
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// GetKlinesRange fetches all klines for a symbol/interval with open time in [start, end].
func (c *Client) GetKlinesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Kline, error) {
	op := "GetKlinesRange"
	var allKlines []*domain.Kline
	from := start

	for !from.After(end) {
		klines, err := c.futuresClient.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			StartTime(from.UnixMilli()).
			EndTime(end.UnixMilli()).
			Limit(c.pageLimit).
			Do(ctx)
		if err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		if len(klines) == 0 {
			break
		}
		now := c.now()
		for _, bk := range klines {
			dk, err := translateBinanceKline(bk, symbol, interval, now)
			if err != nil {
				return nil, c.handleError(ctx, fmt.Errorf("failed to translate historical kline: %w", err), op)
			}
			allKlines = append(allKlines, dk)
		}
		c.logger.Debug(ctx, "Fetched kline page", map[string]interface{}{
			"symbol":   symbol,
			"interval": interval,
			"count":    len(klines),
			"total":    len(allKlines),
		})

		last := klines[len(klines)-1]
		from = time.UnixMilli(last.CloseTime + 1)
		if len(klines) < c.pageLimit {
			break
		}
	}

	return allKlines, nil
}

// ReadCandles downloads the candles with open time in [start, end].
func (c *Client) ReadCandles(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Kline, error) {
	klines, err := c.GetKlinesRange(ctx, symbol, interval, start, end)
	if err != nil {
		return nil, err
	}
	if len(klines) == 0 {
		return nil, fmt.Errorf("no %s %s klines between %s and %s: %w",
			symbol, interval, start.Format(time.RFC3339), end.Format(time.RFC3339), ports.ErrNotFound)
	}
	c.logger.Info(ctx, "Klines downloaded", map[string]interface{}{
		"symbol":   symbol,
		"interval": interval,
		"count":    len(klines),
	})
	return klines, nil
}

// --- Translation Helpers ---

func parseDecimal(field, value string) (float64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("parsing %s '%s': %v: %w", field, value, err, ports.ErrMalformedData)
	}
	return d.InexactFloat64(), nil
}

// translateBinanceKline converts a REST kline. A kline whose close time is
// not yet past now is still forming and is marked as not final.
func translateBinanceKline(bk *futures.Kline, symbol, interval string, now time.Time) (*domain.Kline, error) {
	if bk == nil {
		return nil, fmt.Errorf("received nil historical kline: %w", ports.ErrMalformedData)
	}

	var prices [5]float64
	for i, f := range []struct{ name, value string }{
		{"open price", bk.Open},
		{"high price", bk.High},
		{"low price", bk.Low},
		{"close price", bk.Close},
		{"volume", bk.Volume},
	} {
		v, err := parseDecimal(f.name, f.value)
		if err != nil {
			return nil, err
		}
		prices[i] = v
	}

	closeTime := time.UnixMilli(bk.CloseTime).UTC()
	return &domain.Kline{
		OpenTime:  time.UnixMilli(bk.OpenTime).UTC(),
		CloseTime: closeTime,
		Symbol:    symbol,   // Use passed symbol as it's not in futures.Kline
		Interval:  interval, // Use passed interval
		Open:      prices[0],
		High:      prices[1],
		Low:       prices[2],
		Close:     prices[3],
		Volume:    prices[4],
		IsFinal:   closeTime.Before(now),
	}, nil
}
