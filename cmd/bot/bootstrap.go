package main

import (
	"context"
	"fmt"
	"os"

	"llm-trading-harness/internal/costlog"
	"llm-trading-harness/internal/decisionlog"
	"llm-trading-harness/internal/interfaces"
	"llm-trading-harness/internal/llm/llmobs"
	"llm-trading-harness/internal/llm/noop"
	"llm-trading-harness/internal/llm/openai"
	"llm-trading-harness/internal/logger"
	"llm-trading-harness/internal/marketdata/static"
	"llm-trading-harness/internal/marketdata/zerodha"
	"llm-trading-harness/internal/store"
	"llm-trading-harness/internal/trace"

	"github.com/joho/godotenv"
)

// initializeSystem initializes environment, logger, and tracer.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

func configPath() string {
	if v := os.Getenv("HARNESS_CONFIG"); v != "" {
		return v
	}
	return "config.yaml"
}

// compressOldLogs compresses old decision logs if retention is configured.
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("HARNESS_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := decisionlog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// initializeSource returns the configured market-data source.
func initializeSource(ctx context.Context, cfg *store.Config) interfaces.Source {
	if cfg.MarketData.Source == "ZERODHA" {
		logger.Info(ctx, "Using Zerodha market data", "exchange", cfg.MarketData.Exchange)
		return zerodha.New(zerodha.Params{
			APIKey:      os.Getenv("KITE_API_KEY"),
			AccessToken: os.Getenv("KITE_ACCESS_TOKEN"),
			Exchange:    cfg.MarketData.Exchange,
			Tokens:      cfg.MarketData.Tokens,
		})
	}
	logger.Info(ctx, "Using static synthetic market data")
	return static.New()
}

// initializeDecider returns the LLM decider wrapped with observability.
func initializeDecider(ctx context.Context, cfg *store.Config) interfaces.Decider {
	var decider interfaces.Decider
	switch cfg.LLM.Provider {
	case "OPENAI":
		decider = openai.NewOpenAIDecider(cfg)
	default:
		decider = noop.NewNoopDecider()
		logger.Warn(ctx, "No LLM provider configured - using Noop decider (always HOLD)")
	}
	return llmobs.Wrap(decider)
}

// initializeCosts opens the SQLite cost recorder, degrading to a noop
// recorder when the database cannot be opened.
func initializeCosts(ctx context.Context, cfg *store.Config) interfaces.CostRecorder {
	rec, err := costlog.OpenSQLite(cfg.CostDB)
	if err != nil {
		logger.Warn(ctx, "Cost database unavailable, usage will not be recorded", "path", cfg.CostDB, "error", err)
		return costlog.NewNoop()
	}
	logger.Info(ctx, "Cost recorder opened", "path", cfg.CostDB)
	return rec
}
