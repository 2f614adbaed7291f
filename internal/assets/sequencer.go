// Package assets owns the ordered instrument list the harness walks
// every trading cycle. Validation is eager: a sequencer either holds a
// fully valid list or does not exist, and a failed reload leaves the
// previous list untouched.
package assets

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Asset is one validated instrument entry.
type Asset struct {
	Symbol       string
	Enabled      bool
	Timeframes   []string
	LotSize      float64
	MaxPositions int
}

// AssetConfig is the raw configuration shape of one instrument.
// Enabled defaults to true when omitted.
type AssetConfig struct {
	Symbol       string   `yaml:"symbol"`
	Enabled      *bool    `yaml:"enabled"`
	Timeframes   []string `yaml:"timeframes"`
	LotSize      float64  `yaml:"lot_size"`
	MaxPositions int      `yaml:"max_positions"`
}

// Config is the top-level asset configuration structure.
type Config struct {
	Assets []AssetConfig `yaml:"assets"`
}

// Stats are process-local iteration counters. They belong to the
// sequencer, not the configuration, so they survive Reload.
type Stats struct {
	TotalCycles      int64 `json:"total_cycles"`
	LastEnabledCount int   `json:"last_enabled_count"`
}

// Sequencer yields enabled instruments in configured order, one full
// pass per Cycle call. Not safe for reload concurrent with iteration;
// callers needing that must serialize externally.
type Sequencer struct {
	path   string
	assets []Asset
	stats  Stats
}

// New builds a sequencer from an in-memory configuration. Reload is
// unavailable on sequencers built this way.
func New(cfg *Config) (*Sequencer, error) {
	if cfg == nil {
		return nil, errors.New("no asset configuration provided")
	}
	list, err := validate(cfg)
	if err != nil {
		return nil, err
	}
	return &Sequencer{assets: list}, nil
}

// NewFromFile builds a sequencer from a YAML file. Unlike the session
// calendar there is no permissive fallback: a bad instrument list is a
// fatal misconfiguration and the error propagates.
func NewFromFile(path string) (*Sequencer, error) {
	list, err := loadAndValidate(path)
	if err != nil {
		return nil, err
	}
	return &Sequencer{path: path, assets: list}, nil
}

func loadAndValidate(path string) ([]Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assets: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse assets: %w", err)
	}
	return validate(&cfg)
}

func validate(cfg *Config) ([]Asset, error) {
	list := make([]Asset, 0, len(cfg.Assets))
	seen := map[string]struct{}{}
	for i, entry := range cfg.Assets {
		if entry.Symbol == "" {
			return nil, fmt.Errorf("asset %d: symbol is required", i)
		}
		if _, dup := seen[entry.Symbol]; dup {
			return nil, fmt.Errorf("asset %d: duplicate symbol %q", i, entry.Symbol)
		}
		seen[entry.Symbol] = struct{}{}

		a := Asset{
			Symbol:       entry.Symbol,
			Enabled:      true,
			Timeframes:   entry.Timeframes,
			LotSize:      entry.LotSize,
			MaxPositions: entry.MaxPositions,
		}
		if entry.Enabled != nil {
			a.Enabled = *entry.Enabled
		}
		list = append(list, a)
	}
	return list, nil
}

// Cycle performs one full iteration pass: it recomputes the enabled
// list at call time, in original configured order, and updates the
// iteration statistics. Two consecutive calls over an unchanged
// configuration return identical sequences.
func (s *Sequencer) Cycle() []Asset {
	enabled := s.Enabled()
	s.stats.TotalCycles++
	s.stats.LastEnabledCount = len(enabled)
	return enabled
}

// All returns every instrument, enabled or not, in configured order.
func (s *Sequencer) All() []Asset {
	out := make([]Asset, len(s.assets))
	copy(out, s.assets)
	return out
}

// Enabled returns the enabled instruments in configured order without
// touching the iteration statistics.
func (s *Sequencer) Enabled() []Asset {
	out := make([]Asset, 0, len(s.assets))
	for _, a := range s.assets {
		if a.Enabled {
			out = append(out, a)
		}
	}
	return out
}

// BySymbol returns the instrument with the exact symbol, if present.
func (s *Sequencer) BySymbol(symbol string) (Asset, bool) {
	for _, a := range s.assets {
		if a.Symbol == symbol {
			return a, true
		}
	}
	return Asset{}, false
}

func (s *Sequencer) Count() int { return len(s.assets) }

func (s *Sequencer) EnabledCount() int { return len(s.Enabled()) }

func (s *Sequencer) Stats() Stats { return s.stats }

func (s *Sequencer) ResetStats() { s.stats = Stats{} }

// Reload re-reads the original file, revalidates from scratch, and
// swaps the instrument list in wholesale. Iteration statistics are
// untouched, and any validation error leaves the old list in place.
func (s *Sequencer) Reload() error {
	if s.path == "" {
		return errors.New("cannot reload: sequencer was built from an in-memory configuration")
	}
	list, err := loadAndValidate(s.path)
	if err != nil {
		return fmt.Errorf("reload assets: %w", err)
	}
	s.assets = list
	return nil
}
