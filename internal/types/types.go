package types

type Candle struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}

type Decision struct {
	Action     string  `json:"action"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// TokenUsage is what one LLM request consumed, priced by the decider.
type TokenUsage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	CostUSD          float64 `json:"cost_usd"`
}

type UsageRecord struct {
	Ts               int64
	Symbol           string
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	CostUSD          float64
}

type CostSummary struct {
	Day              string  `json:"day"`
	Requests         int64   `json:"requests"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	CostUSD          float64 `json:"cost_usd"`
}

type MarketSnapshot struct {
	Symbol  string   `json:"symbol"`
	Price   float64  `json:"price"`
	Ts      int64    `json:"ts"`
	Candles []Candle `json:"-"`
}

type StepResult struct {
	Symbol       string   `json:"symbol"`
	Skipped      bool     `json:"skipped"`
	Reevaluation bool     `json:"reevaluation,omitempty"`
	GateReason   string   `json:"gate_reason"`
	Decision     Decision `json:"decision"`
	Price        float64  `json:"price"`
	Time         int64    `json:"time"`
}
