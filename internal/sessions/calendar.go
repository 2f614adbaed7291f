// Package sessions decides which symbols may be evaluated at a given
// wall-clock time. A calendar holds named trading windows, each with a
// symbol whitelist, and a small set of global rules. Windows keep their
// configuration-file order: when two windows overlap, the first match
// wins, which lets a config deliberately override a later window by
// placing a narrower one before it.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"llm-trading-harness/internal/logger"
)

const defaultRiskLevel = "medium"

// ClockTime is a wall-clock time of day at minute resolution.
type ClockTime struct {
	Hour   int
	Minute int
}

func (c ClockTime) Minutes() int { return c.Hour*60 + c.Minute }

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// ParseClock parses an "HH:MM" string. Malformed input fails soft to
// midnight with a warning, so one bad config entry cannot take down
// eligibility checks.
func ParseClock(ctx context.Context, s string) ClockTime {
	var h, m int
	if n, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil || n != 2 || h < 0 || h > 23 || m < 0 || m > 59 {
		logger.Warn(ctx, "Malformed clock time in session config, defaulting to midnight", "value", s)
		return ClockTime{}
	}
	return ClockTime{Hour: h, Minute: m}
}

// Window is a named trading session. A nil Symbols slice means the
// window has no whitelist and every symbol is eligible; an empty
// non-nil slice is a dead zone that blocks all symbols.
type Window struct {
	Name       string
	Start      ClockTime
	End        ClockTime
	Symbols    []string
	Strategies []string
	RiskLevel  string
}

func (w *Window) allows(symbol string) bool {
	if w.Symbols == nil {
		return true
	}
	return slices.Contains(w.Symbols, symbol)
}

// GlobalRules holds calendar-wide behavior flags.
type GlobalRules struct {
	AllowReevaluationOutsideHours bool
}

// Info is a diagnostic projection of a symbol's session state.
type Info struct {
	IsTradeable bool
	WindowName  string
	Window      *Window
	Reason      string
}

// Calendar answers symbol-eligibility questions. Windows and rules are
// immutable after construction; all lookups are pure and never fail.
type Calendar struct {
	windows []Window
	rules   GlobalRules
}

func NewCalendar(windows []Window, rules GlobalRules) *Calendar {
	ws := make([]Window, len(windows))
	copy(ws, windows)
	for i := range ws {
		if ws[i].RiskLevel == "" {
			ws[i].RiskLevel = defaultRiskLevel
		}
	}
	return &Calendar{windows: ws, rules: rules}
}

// Default returns the permissive fallback calendar: a single all-day
// window with no whitelist, reevaluation outside hours allowed.
func Default() *Calendar {
	return NewCalendar(
		[]Window{{Name: "always", Start: ClockTime{0, 0}, End: ClockTime{23, 59}}},
		GlobalRules{AllowReevaluationOutsideHours: true},
	)
}

// Load builds a calendar from a YAML file. A missing or malformed file
// degrades to Default with a warning; Load never fails, so the harness
// fails open rather than closed.
func Load(ctx context.Context, path string) *Calendar {
	cal, err := loadFile(ctx, path)
	if err != nil {
		logger.Warn(ctx, "Session calendar unavailable, using permissive default", "path", path, "error", err)
		return Default()
	}
	logger.Info(ctx, "Session calendar loaded", "path", path, "windows", len(cal.windows))
	return cal
}

type rawWindow struct {
	Start      string    `yaml:"start"`
	End        string    `yaml:"end"`
	Symbols    *[]string `yaml:"symbols"`
	Strategies []string  `yaml:"strategies"`
	RiskLevel  string    `yaml:"risk_level"`
}

type rawCalendar struct {
	// Sessions stays a yaml.Node so the mapping's file order survives
	// decoding; map[string]rawWindow would scramble it.
	Sessions    yaml.Node `yaml:"sessions"`
	GlobalRules struct {
		AllowReevaluationOutsideHours *bool `yaml:"allow_reevaluation_outside_hours"`
	} `yaml:"global_rules"`
}

func loadFile(ctx context.Context, path string) (*Calendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calendar: %w", err)
	}

	var raw rawCalendar
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}
	if raw.Sessions.Kind != yaml.MappingNode {
		return nil, errors.New("calendar has no sessions mapping")
	}

	windows := make([]Window, 0, len(raw.Sessions.Content)/2)
	for i := 0; i+1 < len(raw.Sessions.Content); i += 2 {
		nameNode := raw.Sessions.Content[i]
		var ws rawWindow
		if err := raw.Sessions.Content[i+1].Decode(&ws); err != nil {
			return nil, fmt.Errorf("session %q: %w", nameNode.Value, err)
		}
		w := Window{
			Name:       nameNode.Value,
			Start:      ParseClock(ctx, ws.Start),
			End:        ParseClock(ctx, ws.End),
			Strategies: ws.Strategies,
			RiskLevel:  ws.RiskLevel,
		}
		if ws.Symbols != nil {
			w.Symbols = append([]string{}, (*ws.Symbols)...)
		}
		windows = append(windows, w)
	}

	rules := GlobalRules{AllowReevaluationOutsideHours: true}
	if raw.GlobalRules.AllowReevaluationOutsideHours != nil {
		rules.AllowReevaluationOutsideHours = *raw.GlobalRules.AllowReevaluationOutsideHours
	}

	return NewCalendar(windows, rules), nil
}

// inRange tests minute-of-day membership in [start, end], inclusive on
// both ends. start > end denotes a window that wraps past midnight.
func inRange(cur, start, end int) bool {
	if start <= end {
		return cur >= start && cur <= end
	}
	return cur >= start || cur <= end
}

func minuteOfDay(t time.Time) int { return t.Hour()*60 + t.Minute() }

// activeWindow returns the first window, in configured order, whose
// range contains now and whose whitelist admits symbol.
func (c *Calendar) activeWindow(symbol string, now time.Time) *Window {
	cur := minuteOfDay(now)
	for i := range c.windows {
		w := &c.windows[i]
		if !inRange(cur, w.Start.Minutes(), w.End.Minutes()) {
			continue
		}
		if !w.allows(symbol) {
			continue
		}
		return w
	}
	return nil
}

// nextWindow returns the window admitting symbol with the earliest
// start strictly after now, same day only. Diagnostic use.
func (c *Calendar) nextWindow(symbol string, now time.Time) *Window {
	cur := minuteOfDay(now)
	var next *Window
	for i := range c.windows {
		w := &c.windows[i]
		if !w.allows(symbol) {
			continue
		}
		if w.Start.Minutes() <= cur {
			continue
		}
		if next == nil || w.Start.Minutes() < next.Start.Minutes() {
			next = w
		}
	}
	return next
}

// IsSymbolTradeable reports whether symbol may be evaluated at now, and
// why. An open position may override a closed calendar when the global
// rules permit reevaluation outside hours.
func (c *Calendar) IsSymbolTradeable(symbol string, now time.Time, hasOpenPosition bool) (bool, string) {
	if w := c.activeWindow(symbol, now); w != nil {
		return true, fmt.Sprintf("inside session %q (%s-%s)", w.Name, w.Start, w.End)
	}
	if hasOpenPosition && c.rules.AllowReevaluationOutsideHours {
		return true, "outside trading hours but position is open, reevaluation permitted"
	}
	return false, c.outOfHoursReason(symbol, now)
}

// outOfHoursReason explains why symbol has no active window: a later
// window today, nothing further today, or no windows at all.
func (c *Calendar) outOfHoursReason(symbol string, now time.Time) string {
	if next := c.nextWindow(symbol, now); next != nil {
		return fmt.Sprintf("outside trading hours, next session %q opens at %s", next.Name, next.Start)
	}
	if c.hasAnyWindow(symbol) {
		return "outside trading hours, no upcoming session today"
	}
	return fmt.Sprintf("no sessions configured for symbol %s", symbol)
}

func (c *Calendar) hasAnyWindow(symbol string) bool {
	for i := range c.windows {
		if c.windows[i].allows(symbol) {
			return true
		}
	}
	return false
}

// ActiveSymbols returns the sorted union of the whitelists of every
// window active at now. Unlike IsSymbolTradeable this aggregates across
// all matching windows instead of stopping at the first; overlapping
// windows resolve differently between the two on purpose.
func (c *Calendar) ActiveSymbols(now time.Time) []string {
	cur := minuteOfDay(now)
	set := map[string]struct{}{}
	for i := range c.windows {
		w := &c.windows[i]
		if !inRange(cur, w.Start.Minutes(), w.End.Minutes()) {
			continue
		}
		for _, s := range w.Symbols {
			set[s] = struct{}{}
		}
	}
	syms := make([]string, 0, len(set))
	for s := range set {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	return syms
}

// SessionInfo combines the active-window and next-window lookups into
// one descriptive record. hasOpenPosition is not consulted here; use
// IsSymbolTradeable for the gating decision.
func (c *Calendar) SessionInfo(symbol string, now time.Time) Info {
	if w := c.activeWindow(symbol, now); w != nil {
		return Info{
			IsTradeable: true,
			WindowName:  w.Name,
			Window:      w,
			Reason:      fmt.Sprintf("inside session %q (%s-%s)", w.Name, w.Start, w.End),
		}
	}
	return Info{Reason: c.outOfHoursReason(symbol, now)}
}

// Windows returns the configured windows in order.
func (c *Calendar) Windows() []Window {
	ws := make([]Window, len(c.windows))
	copy(ws, c.windows)
	return ws
}

func (c *Calendar) Rules() GlobalRules { return c.rules }
