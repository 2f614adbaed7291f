package interfaces

import (
	"context"

	"llm-trading-harness/internal/types"
)

// Source provides read-only market data. No order placement lives behind
// this interface; the harness never executes trades.
type Source interface {
	Quote(ctx context.Context, symbol string) (float64, error)
	RecentCandles(ctx context.Context, symbol string, n int) ([]types.Candle, error)
}
