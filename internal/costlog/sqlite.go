// Package costlog persists LLM token usage to SQLite so long-running
// experiments can be priced after the fact.
package costlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"llm-trading-harness/internal/interfaces"
	"llm-trading-harness/internal/types"
)

// SQLiteRecorder appends usage rows to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

var _ interfaces.CostRecorder = (*SQLiteRecorder)(nil)

// OpenSQLite opens (or creates) the database and runs migrations.
func OpenSQLite(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so report tooling can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS llm_usage (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp         INTEGER NOT NULL,
			symbol            TEXT,
			provider          TEXT,
			model             TEXT,
			prompt_tokens     INTEGER,
			completion_tokens INTEGER,
			cost_usd          REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_usage_ts ON llm_usage(timestamp)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:30], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordUsage(ctx context.Context, rec types.UsageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := rec.Ts
	if ts == 0 {
		ts = time.Now().Unix()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO llm_usage (timestamp, symbol, provider, model, prompt_tokens, completion_tokens, cost_usd)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ts, rec.Symbol, rec.Provider, rec.Model, rec.PromptTokens, rec.CompletionTokens, rec.CostUSD)
	if err != nil {
		return fmt.Errorf("insert usage: %w", err)
	}
	return nil
}

// DailySummary aggregates usage for the calendar day containing day,
// in day's location.
func (r *SQLiteRecorder) DailySummary(ctx context.Context, day time.Time) (types.CostSummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var sum types.CostSummary
	sum.Day = start.Format("2006-01-02")

	row := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(prompt_tokens), 0),
		        COALESCE(SUM(completion_tokens), 0),
		        COALESCE(SUM(cost_usd), 0)
		 FROM llm_usage WHERE timestamp >= ? AND timestamp < ?`,
		start.Unix(), end.Unix())
	if err := row.Scan(&sum.Requests, &sum.PromptTokens, &sum.CompletionTokens, &sum.CostUSD); err != nil {
		return types.CostSummary{}, fmt.Errorf("query summary: %w", err)
	}
	return sum, nil
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
