package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"llm-trading-harness/internal/store"
	"llm-trading-harness/internal/trace"
	"llm-trading-harness/internal/types"
)

type OpenAIDecider struct {
	cfg *store.Config
}

func NewOpenAIDecider(cfg *store.Config) *OpenAIDecider {
	return &OpenAIDecider{cfg: cfg}
}

func (d *OpenAIDecider) Decide(ctx context.Context, symbol string, snap types.MarketSnapshot, ctxmap map[string]any) (types.Decision, types.TokenUsage, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return types.Decision{}, types.TokenUsage{}, errors.New("OPENAI_API_KEY missing")
	}

	user := map[string]any{"symbol": symbol, "snapshot": snap, "context": ctxmap}
	ub, _ := json.Marshal(user)
	prompt := fmt.Sprintf("You will receive state as JSON. Respond ONLY with compact JSON matching the schema.\nSchema:%s\nState:%s", d.cfg.LLM.Schema, string(ub))

	body := map[string]any{
		"model":       d.cfg.LLM.Model,
		"messages":    []map[string]string{{"role": "system", "content": d.cfg.LLM.System}, {"role": "user", "content": prompt}},
		"temperature": d.cfg.LLM.Temperature,
		"max_tokens":  d.cfg.LLM.MaxTokens,
	}
	bb, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(bb))
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return types.Decision{}, types.TokenUsage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return types.Decision{}, types.TokenUsage{}, fmt.Errorf("openai http %d", resp.StatusCode)
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return types.Decision{}, types.TokenUsage{}, err
	}

	usage := types.TokenUsage{
		PromptTokens:     r.Usage.PromptTokens,
		CompletionTokens: r.Usage.CompletionTokens,
	}
	usage.CostUSD = float64(usage.PromptTokens)/1000*d.cfg.LLM.PromptCostPer1K +
		float64(usage.CompletionTokens)/1000*d.cfg.LLM.CompletionCostPer1K

	if len(r.Choices) == 0 {
		return types.Decision{}, usage, errors.New("no choices")
	}

	out := strings.TrimSpace(r.Choices[0].Message.Content)

	var dres types.Decision
	if err := json.Unmarshal([]byte(out), &dres); err != nil {
		return types.Decision{Action: "HOLD", Reason: "invalid_json", Confidence: 0.0}, usage, nil
	}

	dres.Action = strings.ToUpper(strings.TrimSpace(dres.Action))
	valid := map[string]bool{"BUY": true, "SELL": true, "HOLD": true}
	if !valid[dres.Action] {
		dres.Action = "HOLD"
	}
	if dres.Confidence < 0 || dres.Confidence > 1 {
		dres.Confidence = 0.0
	}

	return dres, usage, nil
}
