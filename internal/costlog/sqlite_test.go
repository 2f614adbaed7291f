package costlog

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"llm-trading-harness/internal/types"
)

func TestRecordAndSummarize(t *testing.T) {
	rec, err := OpenSQLite(filepath.Join(t.TempDir(), "costs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer rec.Close()

	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 3; i++ {
		err := rec.RecordUsage(ctx, types.UsageRecord{
			Ts:               now.Unix(),
			Symbol:           "EURUSD",
			Provider:         "OPENAI",
			Model:            "gpt-4o-mini",
			PromptTokens:     100,
			CompletionTokens: 20,
			CostUSD:          0.015,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	// A row from another day must stay out of today's summary.
	if err := rec.RecordUsage(ctx, types.UsageRecord{
		Ts: now.AddDate(0, 0, -2).Unix(), Symbol: "EURUSD", PromptTokens: 999,
	}); err != nil {
		t.Fatal(err)
	}

	sum, err := rec.DailySummary(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Requests != 3 {
		t.Errorf("Requests = %d, want 3", sum.Requests)
	}
	if sum.PromptTokens != 300 || sum.CompletionTokens != 60 {
		t.Errorf("token totals = %d/%d, want 300/60", sum.PromptTokens, sum.CompletionTokens)
	}
	if math.Abs(sum.CostUSD-0.045) > 1e-9 {
		t.Errorf("CostUSD = %f, want 0.045", sum.CostUSD)
	}
}

func TestSummaryEmptyDay(t *testing.T) {
	rec, err := OpenSQLite(filepath.Join(t.TempDir(), "costs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer rec.Close()

	sum, err := rec.DailySummary(context.Background(), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if sum.Requests != 0 || sum.CostUSD != 0 {
		t.Errorf("expected empty summary, got %+v", sum)
	}
}
