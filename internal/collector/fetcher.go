package collector

import (
	"context"

	"SignalSentinel/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchKlines(ctx context.Context, symbol, interval string, limit int) ([]model.OHLCV, error)
	FetchCurrentPrice(ctx context.Context, symbol string) (float64, error)
	Fetch24hStats(ctx context.Context, symbol string) (*model.Ticker24h, error)
	Name() string
}
