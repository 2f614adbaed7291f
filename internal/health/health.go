// Package health aggregates the harness's JSON log output into per
// level and per symbol counts for quick triage.
package health

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

type entry struct {
	Time   string `json:"time"`
	Level  string `json:"level"`
	Msg    string `json:"msg"`
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// Report summarizes one log stream.
type Report struct {
	Total     int
	Malformed int
	ByLevel   map[string]int
	BySymbol  map[string]int
	// LastErrors holds the most recent error messages, oldest first.
	LastErrors []string
	FirstTime  string
	LastTime   string
}

const maxLastErrors = 10

// Parse reads one JSON log line per row. Malformed lines are counted
// and skipped, never fatal.
func Parse(r io.Reader) (*Report, error) {
	rep := &Report{
		ByLevel:  map[string]int{},
		BySymbol: map[string]int{},
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		rep.Total++

		var e entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			rep.Malformed++
			continue
		}

		level := strings.ToUpper(e.Level)
		if level == "" {
			level = "UNKNOWN"
		}
		rep.ByLevel[level]++
		if e.Symbol != "" {
			rep.BySymbol[e.Symbol]++
		}
		if level == "ERROR" {
			msg := e.Msg
			if e.Error != "" {
				msg = fmt.Sprintf("%s: %s", e.Msg, e.Error)
			}
			rep.LastErrors = append(rep.LastErrors, msg)
			if len(rep.LastErrors) > maxLastErrors {
				rep.LastErrors = rep.LastErrors[1:]
			}
		}
		if e.Time != "" {
			if rep.FirstTime == "" {
				rep.FirstTime = e.Time
			}
			rep.LastTime = e.Time
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan log: %w", err)
	}
	return rep, nil
}

// ParseFile parses a log file from disk.
func ParseFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()
	return Parse(f)
}
