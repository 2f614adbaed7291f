package interfaces

import (
	"context"

	"llm-trading-harness/internal/types"
)

type Decider interface {
	Decide(ctx context.Context, symbol string, snap types.MarketSnapshot, contextData map[string]any) (types.Decision, types.TokenUsage, error)
}
