package health

import (
	"strings"
	"testing"
)

const sampleLog = `{"time":"2026-01-05T09:30:00Z","level":"INFO","msg":"Session gate evaluated","symbol":"EURUSD"}
{"time":"2026-01-05T09:30:01Z","level":"INFO","msg":"Trading decision made","symbol":"EURUSD"}
{"time":"2026-01-05T09:30:02Z","level":"WARN","msg":"Running in DRY_RUN mode"}
not json at all
{"time":"2026-01-05T09:30:03Z","level":"ERROR","msg":"Step failed","symbol":"USDCAD","error":"no candles available"}

{"time":"2026-01-05T09:30:04Z","level":"INFO","msg":"Trading cycle complete"}
`

func TestParse(t *testing.T) {
	rep, err := Parse(strings.NewReader(sampleLog))
	if err != nil {
		t.Fatal(err)
	}

	if rep.Total != 6 {
		t.Errorf("Total = %d, want 6", rep.Total)
	}
	if rep.Malformed != 1 {
		t.Errorf("Malformed = %d, want 1", rep.Malformed)
	}
	if rep.ByLevel["INFO"] != 3 || rep.ByLevel["WARN"] != 1 || rep.ByLevel["ERROR"] != 1 {
		t.Errorf("ByLevel = %v", rep.ByLevel)
	}
	if rep.BySymbol["EURUSD"] != 2 || rep.BySymbol["USDCAD"] != 1 {
		t.Errorf("BySymbol = %v", rep.BySymbol)
	}
	if len(rep.LastErrors) != 1 || !strings.Contains(rep.LastErrors[0], "no candles available") {
		t.Errorf("LastErrors = %v", rep.LastErrors)
	}
	if rep.FirstTime != "2026-01-05T09:30:00Z" || rep.LastTime != "2026-01-05T09:30:04Z" {
		t.Errorf("span = %s .. %s", rep.FirstTime, rep.LastTime)
	}
}

func TestParseEmpty(t *testing.T) {
	rep, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if rep.Total != 0 || len(rep.ByLevel) != 0 {
		t.Errorf("expected empty report, got %+v", rep)
	}
}
