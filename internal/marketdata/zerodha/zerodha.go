// Package zerodha reads quotes and historical candles from the Kite
// Connect API. Data only — the harness places no orders.
package zerodha

import (
	"context"
	"fmt"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"llm-trading-harness/internal/interfaces"
	"llm-trading-harness/internal/logger"
	"llm-trading-harness/internal/marketdata/static"
	"llm-trading-harness/internal/types"
)

type Params struct {
	APIKey      string
	AccessToken string
	Exchange    string
	// Tokens maps trading symbols to Kite instrument tokens for the
	// historical-data endpoint.
	Tokens map[string]uint32
}

type Source struct {
	p        Params
	kc       *kiteconnect.Client
	fallback *static.Source
}

var _ interfaces.Source = (*Source)(nil)

func New(p Params) *Source {
	kc := kiteconnect.New(p.APIKey)
	kc.SetAccessToken(p.AccessToken)
	return &Source{p: p, kc: kc, fallback: static.New()}
}

func (s *Source) instrument(symbol string) string {
	return s.p.Exchange + ":" + symbol
}

func (s *Source) Quote(ctx context.Context, symbol string) (float64, error) {
	inst := s.instrument(symbol)
	ltp, err := s.kc.GetLTP(inst)
	if err != nil {
		return 0, fmt.Errorf("ltp %s: %w", inst, err)
	}
	q, ok := ltp[inst]
	if !ok {
		return 0, fmt.Errorf("ltp %s: no quote in response", inst)
	}
	return q.LastPrice, nil
}

func (s *Source) RecentCandles(ctx context.Context, symbol string, n int) ([]types.Candle, error) {
	token, ok := s.p.Tokens[symbol]
	if !ok {
		logger.Debug(ctx, "No instrument token configured, using static candles", "symbol", symbol)
		return s.fallback.RecentCandles(ctx, symbol, n)
	}

	to := time.Now()
	from := to.Add(-time.Duration(n+5) * time.Minute)
	data, err := s.kc.GetHistoricalData(int(token), "minute", from, to, false, false)
	if err != nil {
		logger.Warn(ctx, "Historical data fetch failed, using static candles", "symbol", symbol, "error", err)
		return s.fallback.RecentCandles(ctx, symbol, n)
	}

	cs := make([]types.Candle, 0, len(data))
	for _, d := range data {
		cs = append(cs, types.Candle{
			Ts:    d.Date.Unix(),
			Open:  d.Open,
			High:  d.High,
			Low:   d.Low,
			Close: d.Close,
			Vol:   float64(d.Volume),
		})
	}
	if len(cs) > n {
		cs = cs[len(cs)-n:]
	}
	return cs, nil
}
