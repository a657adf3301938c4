package ports

import (
	"context"
	"time"

	"featurePrep/internal/domain"
)

// CandleReader returns the candles of one symbol and interval whose open time
// falls inside [start, end], ordered by open time ascending.
// Implementations return an error wrapping ErrNotFound when the range is empty.
type CandleReader interface {
	ReadCandles(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Kline, error)
}

// CandleWriter persists candles so that a CandleReader can serve them later.
type CandleWriter interface {
	WriteCandles(ctx context.Context, klines []*domain.Kline) error
}
