// Command costreport prints LLM cost aggregates from the harness's
// SQLite usage database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"llm-trading-harness/internal/costlog"
)

func main() {
	dbPath := flag.String("db", "data/llm_costs.db", "path to the cost database")
	dayStr := flag.String("day", "", "day to summarize (YYYY-MM-DD, default today)")
	flag.Parse()

	day := time.Now()
	if *dayStr != "" {
		var err error
		day, err = time.ParseInLocation("2006-01-02", *dayStr, time.Local)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -day %q: %v\n", *dayStr, err)
			os.Exit(2)
		}
	}

	rec, err := costlog.OpenSQLite(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open cost db: %v\n", err)
		os.Exit(1)
	}
	defer rec.Close()

	sum, err := rec.DailySummary(context.Background(), day)
	if err != nil {
		fmt.Fprintf(os.Stderr, "summarize: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("LLM usage for %s\n", sum.Day)
	fmt.Printf("  requests:          %d\n", sum.Requests)
	fmt.Printf("  prompt tokens:     %d\n", sum.PromptTokens)
	fmt.Printf("  completion tokens: %d\n", sum.CompletionTokens)
	fmt.Printf("  cost:              $%.4f\n", sum.CostUSD)
}
