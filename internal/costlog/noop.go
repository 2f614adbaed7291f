package costlog

import (
	"context"
	"time"

	"llm-trading-harness/internal/interfaces"
	"llm-trading-harness/internal/types"
)

// NoopRecorder discards all usage. Used when cost tracking is disabled
// and in tests.
type NoopRecorder struct{}

var _ interfaces.CostRecorder = (*NoopRecorder)(nil)

func NewNoop() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordUsage(ctx context.Context, rec types.UsageRecord) error { return nil }

func (n *NoopRecorder) DailySummary(ctx context.Context, day time.Time) (types.CostSummary, error) {
	return types.CostSummary{Day: day.Format("2006-01-02")}, nil
}

func (n *NoopRecorder) Close() error { return nil }
