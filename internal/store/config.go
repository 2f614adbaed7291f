package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode         string `yaml:"mode"` // DRY_RUN or LIVE
	PollSeconds  int    `yaml:"poll_seconds"`
	SessionsFile string `yaml:"sessions_file"`
	AssetsFile   string `yaml:"assets_file"`

	CostDB          string `yaml:"cost_db"`
	CostSummaryCron string `yaml:"cost_summary_cron"`

	MarketData struct {
		Source   string            `yaml:"source"` // STATIC or ZERODHA
		Exchange string            `yaml:"exchange"`
		Tokens   map[string]uint32 `yaml:"tokens"`
	} `yaml:"market_data"`

	LLM struct {
		Provider            string  `yaml:"provider"`
		Model               string  `yaml:"model"`
		MaxTokens           int     `yaml:"max_tokens"`
		Temperature         float32 `yaml:"temperature"`
		System              string  `yaml:"system"`
		Schema              string  `yaml:"schema"`
		PromptCostPer1K     float64 `yaml:"prompt_cost_per_1k"`
		CompletionCostPer1K float64 `yaml:"completion_cost_per_1k"`
	} `yaml:"llm"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if c.PollSeconds <= 0 {
		return fmt.Errorf("poll_seconds must be positive, got %d", c.PollSeconds)
	}
	if c.MarketData.Source != "STATIC" && c.MarketData.Source != "ZERODHA" {
		return fmt.Errorf("invalid market_data.source '%s': must be 'STATIC' or 'ZERODHA'", c.MarketData.Source)
	}
	switch c.LLM.Provider {
	case "", "NOOP", "OPENAI":
	default:
		return fmt.Errorf("invalid llm.provider '%s': must be 'OPENAI' or 'NOOP'", c.LLM.Provider)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Mode == "" {
		c.Mode = "DRY_RUN"
	}
	if c.PollSeconds == 0 {
		c.PollSeconds = 15
	}
	if c.SessionsFile == "" {
		c.SessionsFile = "sessions.yaml"
	}
	if c.AssetsFile == "" {
		c.AssetsFile = "assets.yaml"
	}
	if c.CostDB == "" {
		c.CostDB = "data/llm_costs.db"
	}
	if c.CostSummaryCron == "" {
		c.CostSummaryCron = "0 0 0 * * *" // midnight daily
	}
	if c.MarketData.Source == "" {
		c.MarketData.Source = "STATIC"
	}
	if c.MarketData.Exchange == "" {
		c.MarketData.Exchange = "NSE"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 256
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
