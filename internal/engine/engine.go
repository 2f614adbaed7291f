// Package engine drives the trading cycle: it walks the asset
// sequencer, gates each symbol through the session calendar, asks the
// LLM for a decision, and records usage and decision history. Positions
// are paper-only; nothing here sends orders anywhere.
package engine

import (
	"context"
	"errors"
	"time"

	"llm-trading-harness/internal/assets"
	"llm-trading-harness/internal/decisionlog"
	"llm-trading-harness/internal/interfaces"
	"llm-trading-harness/internal/logger"
	"llm-trading-harness/internal/sessions"
	"llm-trading-harness/internal/store"
	"llm-trading-harness/internal/types"
)

const candleDepth = 100

type position struct {
	qty      int
	avg      float64
	openedAt time.Time
}

type Engine struct {
	cfg   *store.Config
	cal   *sessions.Calendar
	seq   *assets.Sequencer
	src   interfaces.Source
	llm   interfaces.Decider
	costs interfaces.CostRecorder
	pos   map[string]*position
	now   func() time.Time
}

var _ interfaces.Engine = (*Engine)(nil)

func New(cfg *store.Config, cal *sessions.Calendar, seq *assets.Sequencer, src interfaces.Source, llm interfaces.Decider, costs interfaces.CostRecorder) *Engine {
	return &Engine{
		cfg:   cfg,
		cal:   cal,
		seq:   seq,
		src:   src,
		llm:   llm,
		costs: costs,
		pos:   map[string]*position{},
		now:   time.Now,
	}
}

// RunCycle performs one full pass over the enabled instruments in
// configured order. Step errors are logged and skipped so one bad
// symbol cannot stall the rest of the pass.
func (e *Engine) RunCycle(ctx context.Context) []types.StepResult {
	pass := e.seq.Cycle()
	results := make([]types.StepResult, 0, len(pass))
	for _, a := range pass {
		st, err := e.Step(ctx, a)
		if err != nil {
			logger.ErrorWithErr(ctx, "Step failed", err, "symbol", a.Symbol)
			continue
		}
		if st != nil {
			results = append(results, *st)
		}
	}
	logger.Info(ctx, "Trading cycle complete",
		"assets", len(pass),
		"evaluated", len(results),
		"total_cycles", e.seq.Stats().TotalCycles,
	)
	return results
}

// Step evaluates one instrument. A symbol outside its trading windows
// is skipped unless it carries an open position and the calendar
// permits reevaluation outside hours.
func (e *Engine) Step(ctx context.Context, a assets.Asset) (*types.StepResult, error) {
	now := e.now()
	hasPosition := e.pos[a.Symbol] != nil

	tradeable, gateReason := e.cal.IsSymbolTradeable(a.Symbol, now, hasPosition)
	logger.Gate(ctx, a.Symbol, tradeable, gateReason)
	if !tradeable {
		return &types.StepResult{Symbol: a.Symbol, Skipped: true, GateReason: gateReason, Time: now.Unix()}, nil
	}

	info := e.cal.SessionInfo(a.Symbol, now)
	reevaluation := info.Window == nil // tradeable with no active window = open-position override

	candles, err := e.src.RecentCandles(ctx, a.Symbol, candleDepth)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, errors.New("no candles available")
	}
	latest := candles[len(candles)-1]
	snap := types.MarketSnapshot{Symbol: a.Symbol, Price: latest.Close, Ts: latest.Ts, Candles: candles}

	ctxmap := map[string]any{
		"lot_size":      a.LotSize,
		"max_positions": a.MaxPositions,
		"timeframes":    a.Timeframes,
		"has_position":  hasPosition,
		"reevaluation":  reevaluation,
		"session":       info.WindowName,
	}
	decision, usage, err := e.llm.Decide(ctx, a.Symbol, snap, ctxmap)
	if err != nil {
		return nil, err
	}

	if err := e.costs.RecordUsage(ctx, types.UsageRecord{
		Ts:               now.Unix(),
		Symbol:           a.Symbol,
		Provider:         e.cfg.LLM.Provider,
		Model:            e.cfg.LLM.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		CostUSD:          usage.CostUSD,
	}); err != nil {
		logger.Warn(ctx, "Failed to record LLM usage", "symbol", a.Symbol, "error", err)
	}

	logger.Decision(ctx, a.Symbol, decision.Action, decision.Confidence, decision.Reason)
	_ = decisionlog.Append(decisionlog.Entry{
		Symbol:     a.Symbol,
		Action:     decision.Action,
		Reason:     decision.Reason,
		Confidence: decision.Confidence,
		Price:      snap.Price,
		Window:     info.WindowName,
	})
	if reevaluation {
		held := 0
		if p := e.pos[a.Symbol]; p != nil {
			held = p.qty
		}
		_ = decisionlog.AppendReevaluation(decisionlog.ReevaluationEntry{
			Symbol:  a.Symbol,
			Reason:  gateReason,
			Price:   snap.Price,
			HeldQty: held,
		})
	}

	e.applyDecision(ctx, a.Symbol, decision, snap.Price, now)

	return &types.StepResult{
		Symbol:       a.Symbol,
		Reevaluation: reevaluation,
		GateReason:   gateReason,
		Decision:     decision,
		Price:        snap.Price,
		Time:         now.Unix(),
	}, nil
}

// applyDecision maintains the paper position book that feeds the
// hasOpenPosition flag back into session gating.
func (e *Engine) applyDecision(ctx context.Context, symbol string, d types.Decision, price float64, now time.Time) {
	switch d.Action {
	case "BUY":
		p := e.pos[symbol]
		if p == nil {
			p = &position{openedAt: now}
			e.pos[symbol] = p
		}
		total := p.avg*float64(p.qty) + price
		p.qty++
		p.avg = total / float64(p.qty)
		logger.Info(ctx, "Paper position updated", "symbol", symbol, "qty", p.qty, "avg", p.avg)
	case "SELL":
		if p := e.pos[symbol]; p != nil {
			logger.Info(ctx, "Paper position closed", "symbol", symbol, "qty", p.qty, "avg", p.avg, "exit", price)
			delete(e.pos, symbol)
		}
	}
}

// SetCalendar swaps in a freshly loaded session calendar. Callers must
// not invoke this concurrently with RunCycle.
func (e *Engine) SetCalendar(cal *sessions.Calendar) {
	e.cal = cal
}

// HasOpenPosition reports whether the paper book holds symbol.
func (e *Engine) HasOpenPosition(symbol string) bool {
	return e.pos[symbol] != nil
}

// OpenPositions returns the symbols currently held, unordered.
func (e *Engine) OpenPositions() []string {
	out := make([]string, 0, len(e.pos))
	for s := range e.pos {
		out = append(out, s)
	}
	return out
}
