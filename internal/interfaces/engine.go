package interfaces

import (
	"context"

	"llm-trading-harness/internal/types"
)

type Engine interface {
	RunCycle(ctx context.Context) []types.StepResult
}
