package noop

import (
	"context"

	"llm-trading-harness/internal/types"
)

// NoopDecider always holds. Used when no LLM provider is configured.
type NoopDecider struct{}

func NewNoopDecider() *NoopDecider { return &NoopDecider{} }

func (d *NoopDecider) Decide(ctx context.Context, symbol string, snap types.MarketSnapshot, ctxmap map[string]any) (types.Decision, types.TokenUsage, error) {
	return types.Decision{Action: "HOLD", Reason: "noop decider", Confidence: 0}, types.TokenUsage{}, nil
}
