package binanceclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"featurePrep/internal/ports"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct {
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.errorMsgs = append(m.errorMsgs, msg)
}

func TestNew(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	c, err := New(Config{Logger: &mockLogger{}, UseTestnet: true, PageLimit: 5000})
	require.NoError(t, err)
	assert.Equal(t, baseURLTestnet, c.futuresClient.BaseURL)
	assert.Equal(t, maxKlinesPerRequest, c.pageLimit)
}

func TestTranslateBinanceKline(t *testing.T) {
	openTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bk := &futures.Kline{
		OpenTime:  openTime.UnixMilli(),
		CloseTime: openTime.Add(time.Hour).UnixMilli() - 1,
		Open:      "2250.10",
		High:      "2275.00",
		Low:       "2240.55",
		Close:     "2261.37",
		Volume:    "18250.431",
	}

	k, err := translateBinanceKline(bk, "ETHUSDT", "1h", openTime.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, openTime.Equal(k.OpenTime))
	assert.Equal(t, "ETHUSDT", k.Symbol)
	assert.Equal(t, "1h", k.Interval)
	assert.Equal(t, 2250.10, k.Open)
	assert.Equal(t, 2275.0, k.High)
	assert.Equal(t, 2240.55, k.Low)
	assert.Equal(t, 2261.37, k.Close)
	assert.Equal(t, 18250.431, k.Volume)
	assert.True(t, k.IsFinal)

	forming, err := translateBinanceKline(bk, "ETHUSDT", "1h", openTime.Add(30*time.Minute))
	require.NoError(t, err)
	assert.False(t, forming.IsFinal)

	bk.Close = "n/a"
	_, err = translateBinanceKline(bk, "ETHUSDT", "1h", openTime)
	assert.ErrorIs(t, err, ports.ErrMalformedData)

	_, err = translateBinanceKline(nil, "ETHUSDT", "1h", openTime)
	assert.ErrorIs(t, err, ports.ErrMalformedData)
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "rate limited", err: &common.APIError{Code: -1003, Message: "Too many requests"}, want: ports.ErrRateLimited},
		{name: "bad symbol", err: &common.APIError{Code: -1121, Message: "Invalid symbol"}, want: ports.ErrInvalidArgument},
		{name: "bad key", err: &common.APIError{Code: -2015, Message: "Invalid API-key"}, want: ports.ErrAuthenticationFailed},
		{name: "unmapped code", err: &common.APIError{Code: -9999}, want: ports.ErrUnknown},
		{name: "deadline", err: context.DeadlineExceeded, want: ports.ErrTimeout},
		{name: "canceled", err: context.Canceled, want: ports.ErrContextCanceled},
		{name: "refused", err: errors.New("dial tcp: connection refused"), want: ports.ErrConnectionFailed},
		{name: "other", err: errors.New("boom"), want: ports.ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &mockLogger{}
			c := &Client{logger: logger}

			err := c.handleError(context.Background(), tt.err, "GetKlinesRange")
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.err)
			assert.Len(t, logger.errorMsgs, 1)
		})
	}

	c := &Client{logger: &mockLogger{}}
	assert.NoError(t, c.handleError(context.Background(), nil, "noop"))
}
