package llmobs

import (
	"context"

	"llm-trading-harness/internal/interfaces"
	"llm-trading-harness/internal/logger"
	"llm-trading-harness/internal/trace"
	"llm-trading-harness/internal/types"
)

// observableDecider wraps a Decider with logging and tracing.
type observableDecider struct {
	decider interfaces.Decider
}

var _ interfaces.Decider = (*observableDecider)(nil)

func Wrap(decider interfaces.Decider) interfaces.Decider {
	return &observableDecider{decider: decider}
}

func (od *observableDecider) Decide(
	ctx context.Context,
	symbol string,
	snap types.MarketSnapshot,
	contextData map[string]any,
) (types.Decision, types.TokenUsage, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Decide")
	defer span.End()

	// Skip(1) so the log lines point at the actual caller, not this
	// middleware.
	logger.DebugSkip(ctx, 1, "Requesting trading decision",
		"symbol", symbol,
		"price", snap.Price,
	)

	decision, usage, err := od.decider.Decide(ctx, symbol, snap, contextData)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to get trading decision", err,
			"symbol", symbol,
			"price", snap.Price,
		)
		return types.Decision{}, usage, err
	}

	logger.InfoSkip(ctx, 1, "Trading decision received",
		"symbol", symbol,
		"action", decision.Action,
		"reason", decision.Reason,
		"confidence", decision.Confidence,
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens,
		"cost_usd", usage.CostUSD,
	)

	return decision, usage, nil
}
