package interfaces

import (
	"context"
	"time"

	"llm-trading-harness/internal/types"
)

// CostRecorder persists LLM token usage for later cost analysis.
type CostRecorder interface {
	RecordUsage(ctx context.Context, rec types.UsageRecord) error
	DailySummary(ctx context.Context, day time.Time) (types.CostSummary, error)
	Close() error
}
