package store

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "mode: DRY_RUN\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PollSeconds != 15 {
		t.Errorf("PollSeconds = %d, want 15", cfg.PollSeconds)
	}
	if cfg.SessionsFile != "sessions.yaml" || cfg.AssetsFile != "assets.yaml" {
		t.Errorf("unexpected file defaults: %s, %s", cfg.SessionsFile, cfg.AssetsFile)
	}
	if cfg.MarketData.Source != "STATIC" {
		t.Errorf("MarketData.Source = %s, want STATIC", cfg.MarketData.Source)
	}
	if cfg.CostDB == "" || cfg.CostSummaryCron == "" {
		t.Error("cost defaults not applied")
	}
}

func TestLoadConfigInvalidMode(t *testing.T) {
	if _, err := LoadConfig(writeConfig(t, "mode: YOLO\n")); err == nil {
		t.Fatal("expected validation error for invalid mode")
	}
}

func TestLoadConfigInvalidProvider(t *testing.T) {
	if _, err := LoadConfig(writeConfig(t, "mode: DRY_RUN\nllm:\n  provider: GEMINI\n")); err == nil {
		t.Fatal("expected validation error for unknown provider")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
