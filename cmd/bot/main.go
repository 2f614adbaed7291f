package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"llm-trading-harness/internal/assets"
	"llm-trading-harness/internal/engine"
	"llm-trading-harness/internal/logger"
	"llm-trading-harness/internal/sessions"
	"llm-trading-harness/internal/store"
	"llm-trading-harness/internal/trace"

	"github.com/robfig/cron/v3"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	defer trace.Shutdown(context.Background())

	cfg, err := store.LoadConfig(configPath())
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		os.Exit(1)
	}
	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode")
	}

	compressOldLogs(ctx)

	// Calendar loading never fails; a broken file degrades to the
	// permissive default. A broken asset list is fatal.
	cal := sessions.Load(ctx, cfg.SessionsFile)
	seq, err := assets.NewFromFile(cfg.AssetsFile)
	if err != nil {
		logger.ErrorWithErr(ctx, "Invalid asset configuration", err, "path", cfg.AssetsFile)
		os.Exit(1)
	}

	src := initializeSource(ctx, cfg)
	decider := initializeDecider(ctx, cfg)
	costs := initializeCosts(ctx, cfg)
	defer costs.Close()

	eng := engine.New(cfg, cal, seq, src, decider, costs)

	costCron := cron.New(cron.WithSeconds())
	if _, err := costCron.AddFunc(cfg.CostSummaryCron, func() {
		day := time.Now().AddDate(0, 0, -1)
		sum, err := costs.DailySummary(context.Background(), day)
		if err != nil {
			logger.Warn(context.Background(), "Daily cost summary failed", "error", err)
			return
		}
		logger.Info(context.Background(), "Daily LLM cost summary",
			"day", sum.Day,
			"requests", sum.Requests,
			"prompt_tokens", sum.PromptTokens,
			"completion_tokens", sum.CompletionTokens,
			"cost_usd", sum.CostUSD,
		)
	}); err != nil {
		logger.Warn(ctx, "Invalid cost summary cron expression", "expr", cfg.CostSummaryCron, "error", err)
	}
	costCron.Start()
	defer costCron.Stop()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	hupc := make(chan os.Signal, 1)
	signal.Notify(hupc, syscall.SIGHUP)

	tick := time.NewTicker(time.Duration(cfg.PollSeconds) * time.Second)
	defer tick.Stop()

	logger.Info(ctx, "Harness started", "poll_seconds", cfg.PollSeconds, "assets", seq.Count())

	// One select loop owns the engine, so reload never races iteration.
	for {
		select {
		case <-tick.C:
			results := eng.RunCycle(ctx)
			for _, st := range results {
				b, _ := json.Marshal(st)
				fmt.Println(string(b))
			}
		case <-hupc:
			logger.Info(ctx, "SIGHUP received, reloading configuration")
			if err := seq.Reload(); err != nil {
				logger.Warn(ctx, "Asset reload failed, keeping previous list", "error", err)
			} else {
				logger.Info(ctx, "Assets reloaded", "count", seq.Count(), "enabled", seq.EnabledCount())
			}
			eng.SetCalendar(sessions.Load(ctx, cfg.SessionsFile))
		case <-sigc:
			logger.Info(ctx, "Shutting down")
			sum, err := costs.DailySummary(context.Background(), time.Now())
			if err == nil {
				logger.Info(ctx, "Cost summary for today", "day", sum.Day, "requests", sum.Requests, "cost_usd", sum.CostUSD)
			}
			return
		case <-ctx.Done():
			return
		}
	}
}
