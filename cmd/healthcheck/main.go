// Command healthcheck summarizes a harness JSON log file: line counts
// per level and symbol, plus the most recent errors.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"llm-trading-harness/internal/health"
)

func main() {
	logPath := flag.String("log", "", "path to a JSON log file")
	flag.Parse()

	if *logPath == "" {
		fmt.Fprintln(os.Stderr, "usage: healthcheck -log <file>")
		os.Exit(2)
	}

	rep, err := health.ParseFile(*logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("lines: %d (malformed: %d)\n", rep.Total, rep.Malformed)
	if rep.FirstTime != "" {
		fmt.Printf("span:  %s .. %s\n", rep.FirstTime, rep.LastTime)
	}

	fmt.Println("by level:")
	for _, level := range sortedKeys(rep.ByLevel) {
		fmt.Printf("  %-7s %d\n", level, rep.ByLevel[level])
	}
	if len(rep.BySymbol) > 0 {
		fmt.Println("by symbol:")
		for _, sym := range sortedKeys(rep.BySymbol) {
			fmt.Printf("  %-10s %d\n", sym, rep.BySymbol[sym])
		}
	}
	if len(rep.LastErrors) > 0 {
		fmt.Println("recent errors:")
		for _, msg := range rep.LastErrors {
			fmt.Printf("  %s\n", msg)
		}
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
