package sessions

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func at(h, m int) time.Time {
	return time.Date(2026, 1, 5, h, m, 0, 0, time.UTC)
}

func scenarioCalendar() *Calendar {
	return NewCalendar([]Window{
		{Name: "londres", Start: ClockTime{2, 0}, End: ClockTime{5, 0}, Symbols: []string{"EURUSD", "GBPUSD"}},
		{Name: "ny_overlap", Start: ClockTime{8, 0}, End: ClockTime{11, 0}, Symbols: []string{"EURUSD", "GBPUSD", "USDCAD"}},
		{Name: "dead_zone", Start: ClockTime{13, 0}, End: ClockTime{18, 0}, Symbols: []string{}},
	}, GlobalRules{AllowReevaluationOutsideHours: true})
}

func TestInRange(t *testing.T) {
	cases := []struct {
		name            string
		cur, start, end int
		want            bool
	}{
		{"inside normal window", 9*60 + 30, 8 * 60, 11 * 60, true},
		{"at start boundary", 8 * 60, 8 * 60, 11 * 60, true},
		{"at end boundary", 11 * 60, 8 * 60, 11 * 60, true},
		{"before normal window", 7 * 60, 8 * 60, 11 * 60, false},
		{"wraparound before midnight", 23 * 60, 22 * 60, 2 * 60, true},
		{"wraparound after midnight", 1 * 60, 22 * 60, 2 * 60, true},
		{"wraparound outside", 10 * 60, 22 * 60, 2 * 60, false},
	}
	for _, tc := range cases {
		if got := inRange(tc.cur, tc.start, tc.end); got != tc.want {
			t.Errorf("%s: inRange(%d, %d, %d) = %v, want %v", tc.name, tc.cur, tc.start, tc.end, got, tc.want)
		}
	}
}

func TestWraparoundWindow(t *testing.T) {
	cal := NewCalendar([]Window{
		{Name: "overnight", Start: ClockTime{22, 0}, End: ClockTime{2, 0}, Symbols: []string{"BTCUSD"}},
	}, GlobalRules{})

	if ok, _ := cal.IsSymbolTradeable("BTCUSD", at(23, 0), false); !ok {
		t.Error("expected BTCUSD tradeable at 23:00 inside 22:00-02:00")
	}
	if ok, _ := cal.IsSymbolTradeable("BTCUSD", at(1, 0), false); !ok {
		t.Error("expected BTCUSD tradeable at 01:00 inside 22:00-02:00")
	}
	if ok, _ := cal.IsSymbolTradeable("BTCUSD", at(10, 0), false); ok {
		t.Error("expected BTCUSD not tradeable at 10:00 outside 22:00-02:00")
	}
}

func TestParseClock(t *testing.T) {
	ctx := context.Background()

	if got := ParseClock(ctx, "07:30"); got != (ClockTime{7, 30}) {
		t.Errorf("ParseClock(07:30) = %v", got)
	}
	// Malformed strings fail soft to midnight.
	for _, s := range []string{"garbage", "25:00", "12:61", "", ":"} {
		if got := ParseClock(ctx, s); got != (ClockTime{}) {
			t.Errorf("ParseClock(%q) = %v, want midnight", s, got)
		}
	}
}

func TestScenarioTradeableInsideWindow(t *testing.T) {
	cal := scenarioCalendar()

	ok, reason := cal.IsSymbolTradeable("EURUSD", at(9, 30), false)
	if !ok {
		t.Fatalf("expected EURUSD tradeable at 09:30, reason: %s", reason)
	}
	if !strings.Contains(reason, "ny_overlap") {
		t.Errorf("reason should name the active window, got: %s", reason)
	}
}

func TestScenarioOutsideHoursAndReevaluation(t *testing.T) {
	cal := scenarioCalendar()

	// 14:00 sits in dead_zone, which blocks everything.
	ok, reason := cal.IsSymbolTradeable("EURUSD", at(14, 0), false)
	if ok {
		t.Fatal("expected EURUSD not tradeable at 14:00")
	}
	if !strings.Contains(reason, "outside trading hours") {
		t.Errorf("expected outside-hours reason, got: %s", reason)
	}

	ok, reason = cal.IsSymbolTradeable("EURUSD", at(14, 0), true)
	if !ok {
		t.Fatal("expected open position to permit reevaluation at 14:00")
	}
	if !strings.Contains(reason, "reevaluation permitted") {
		t.Errorf("expected reevaluation reason, got: %s", reason)
	}
}

func TestReevaluationOverrideForUnknownSymbol(t *testing.T) {
	cal := scenarioCalendar()

	ok, reason := cal.IsSymbolTradeable("USDJPY", at(9, 30), false)
	if ok {
		t.Fatal("expected USDJPY not tradeable without a window")
	}
	if !strings.Contains(reason, "no sessions configured") {
		t.Errorf("expected no-sessions reason, got: %s", reason)
	}

	ok, reason = cal.IsSymbolTradeable("USDJPY", at(9, 30), true)
	if !ok {
		t.Fatal("expected reevaluation override for open position")
	}
	if !strings.Contains(reason, "reevaluation") {
		t.Errorf("expected reevaluation reason, got: %s", reason)
	}
}

func TestReevaluationDisabledByGlobalRules(t *testing.T) {
	cal := NewCalendar([]Window{
		{Name: "morning", Start: ClockTime{8, 0}, End: ClockTime{11, 0}, Symbols: []string{"EURUSD"}},
	}, GlobalRules{AllowReevaluationOutsideHours: false})

	if ok, _ := cal.IsSymbolTradeable("EURUSD", at(14, 0), true); ok {
		t.Error("expected open position not to override when reevaluation is disabled")
	}
}

func TestDeadZoneBlocksAllSymbols(t *testing.T) {
	cal := scenarioCalendar()

	for _, sym := range []string{"EURUSD", "GBPUSD", "USDCAD", "NEVERSEEN"} {
		if ok, _ := cal.IsSymbolTradeable(sym, at(14, 0), false); ok {
			t.Errorf("expected %s blocked during dead zone", sym)
		}
	}
}

func TestEmptyWhitelistDistinctFromAbsent(t *testing.T) {
	// nil whitelist admits everything; empty whitelist admits nothing.
	open := NewCalendar([]Window{
		{Name: "open", Start: ClockTime{0, 0}, End: ClockTime{23, 59}},
	}, GlobalRules{})
	if ok, _ := open.IsSymbolTradeable("ANYTHING", at(12, 0), false); !ok {
		t.Error("window without whitelist should admit any symbol")
	}

	dead := NewCalendar([]Window{
		{Name: "dead", Start: ClockTime{0, 0}, End: ClockTime{23, 59}, Symbols: []string{}},
	}, GlobalRules{})
	if ok, _ := dead.IsSymbolTradeable("ANYTHING", at(12, 0), false); ok {
		t.Error("window with empty whitelist should block every symbol")
	}
}

func TestFirstMatchWinsOnOverlap(t *testing.T) {
	cal := NewCalendar([]Window{
		{Name: "override", Start: ClockTime{9, 0}, End: ClockTime{10, 0}, Symbols: []string{"EURUSD"}, RiskLevel: "low"},
		{Name: "broad", Start: ClockTime{8, 0}, End: ClockTime{11, 0}, Symbols: []string{"EURUSD"}, RiskLevel: "high"},
	}, GlobalRules{})

	info := cal.SessionInfo("EURUSD", at(9, 30))
	if info.WindowName != "override" {
		t.Errorf("expected first configured window to win, got %q", info.WindowName)
	}
	if info.Window.RiskLevel != "low" {
		t.Errorf("expected metadata from the first match, got %q", info.Window.RiskLevel)
	}
}

func TestNextWindowReason(t *testing.T) {
	cal := scenarioCalendar()

	_, reason := cal.IsSymbolTradeable("USDCAD", at(6, 0), false)
	if !strings.Contains(reason, "ny_overlap") || !strings.Contains(reason, "08:00") {
		t.Errorf("expected next-window diagnostics, got: %s", reason)
	}
}

func TestActiveSymbolsUnion(t *testing.T) {
	cal := scenarioCalendar()

	got := cal.ActiveSymbols(at(9, 30))
	want := []string{"EURUSD", "GBPUSD", "USDCAD"}
	if len(got) != len(want) {
		t.Fatalf("ActiveSymbols(09:30) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ActiveSymbols(09:30) = %v, want %v", got, want)
		}
	}

	if got := cal.ActiveSymbols(at(14, 0)); len(got) != 0 {
		t.Errorf("ActiveSymbols(14:00) = %v, want empty", got)
	}
}

func TestActiveSymbolsAggregatesOverlappingWindows(t *testing.T) {
	// Unlike IsSymbolTradeable, the union ignores match order and
	// collects every active window's whitelist.
	cal := NewCalendar([]Window{
		{Name: "a", Start: ClockTime{9, 0}, End: ClockTime{10, 0}, Symbols: []string{"EURUSD"}},
		{Name: "b", Start: ClockTime{9, 0}, End: ClockTime{10, 0}, Symbols: []string{"GBPUSD"}},
	}, GlobalRules{})

	got := cal.ActiveSymbols(at(9, 30))
	if len(got) != 2 || got[0] != "EURUSD" || got[1] != "GBPUSD" {
		t.Errorf("ActiveSymbols = %v, want [EURUSD GBPUSD]", got)
	}
}

func TestSessionInfo(t *testing.T) {
	cal := scenarioCalendar()

	info := cal.SessionInfo("EURUSD", at(9, 30))
	if !info.IsTradeable || info.WindowName != "ny_overlap" || info.Window == nil {
		t.Errorf("unexpected info inside window: %+v", info)
	}

	info = cal.SessionInfo("EURUSD", at(6, 0))
	if info.IsTradeable || info.Window != nil {
		t.Errorf("unexpected info outside window: %+v", info)
	}
	if !strings.Contains(info.Reason, "ny_overlap") {
		t.Errorf("expected next-window reason, got: %s", info.Reason)
	}
}

func TestLoadPreservesFileOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.yaml")
	content := `sessions:
  zulu: {start: "01:00", end: "02:00", symbols: [A]}
  alpha: {start: "03:00", end: "04:00", symbols: [B]}
  mike: {start: "05:00", end: "06:00", symbols: [C]}
global_rules:
  allow_reevaluation_outside_hours: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cal := Load(context.Background(), path)
	ws := cal.Windows()
	if len(ws) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(ws))
	}
	for i, name := range []string{"zulu", "alpha", "mike"} {
		if ws[i].Name != name {
			t.Errorf("window %d = %q, want %q", i, ws[i].Name, name)
		}
	}
	if cal.Rules().AllowReevaluationOutsideHours {
		t.Error("expected reevaluation disabled by global rules")
	}
	if ws[0].RiskLevel != "medium" {
		t.Errorf("expected default risk level, got %q", ws[0].RiskLevel)
	}
}

func TestLoadFallsBackOnMissingFile(t *testing.T) {
	cal := Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))

	// The fallback permits everything at any time.
	if ok, reason := cal.IsSymbolTradeable("ANY", at(3, 33), false); !ok {
		t.Fatalf("default calendar should permit everything, reason: %s", reason)
	}
	ws := cal.Windows()
	if len(ws) != 1 || ws[0].Name != "always" {
		t.Errorf("expected single 'always' window, got %+v", ws)
	}
	if !cal.Rules().AllowReevaluationOutsideHours {
		t.Error("default rules should allow reevaluation outside hours")
	}
}

func TestLoadFallsBackOnMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.yaml")
	if err := os.WriteFile(path, []byte("{not yaml: ["), 0o644); err != nil {
		t.Fatal(err)
	}

	cal := Load(context.Background(), path)
	if ok, _ := cal.IsSymbolTradeable("ANY", at(12, 0), false); !ok {
		t.Error("malformed calendar should degrade to the permissive default")
	}
}

func TestLoadMalformedTimeDefaultsToMidnight(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.yaml")
	content := `sessions:
  broken: {start: "banana", end: "05:00", symbols: [EURUSD]}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cal := Load(context.Background(), path)
	ws := cal.Windows()
	if len(ws) != 1 {
		t.Fatalf("expected window to survive bad time string, got %d windows", len(ws))
	}
	if ws[0].Start != (ClockTime{}) {
		t.Errorf("expected start defaulted to midnight, got %v", ws[0].Start)
	}
	// 00:00-05:00 now covers 01:00.
	if ok, _ := cal.IsSymbolTradeable("EURUSD", at(1, 0), false); !ok {
		t.Error("expected window usable after soft time default")
	}
}
