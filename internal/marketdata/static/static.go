// Package static synthesizes candle data for dry runs. Output is
// deterministic per symbol so repeated cycles see the same tape.
package static

import (
	"context"
	"hash/fnv"
	"math/rand"
	"time"

	"llm-trading-harness/internal/interfaces"
	"llm-trading-harness/internal/types"
)

type Source struct{}

var _ interfaces.Source = (*Source)(nil)

func New() *Source { return &Source{} }

func seedFor(symbol string) int64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	return int64(h.Sum64())
}

func (s *Source) Quote(ctx context.Context, symbol string) (float64, error) {
	rng := rand.New(rand.NewSource(seedFor(symbol)))
	return 1000 + rng.Float64()*100, nil
}

func (s *Source) RecentCandles(ctx context.Context, symbol string, n int) ([]types.Candle, error) {
	rng := rand.New(rand.NewSource(seedFor(symbol)))
	cs := make([]types.Candle, 0, n)
	base := 1000.0
	now := time.Now().Unix()

	for i := n; i > 0; i-- {
		c := base + float64(i) + (rng.Float64()-0.5)*5
		h := c + rng.Float64()*3
		l := c - rng.Float64()*3
		cs = append(cs, types.Candle{
			Ts:    now - int64((n-i+1)*60),
			Open:  c - 0.5,
			High:  h,
			Low:   l,
			Close: c,
			Vol:   rng.Float64() * 1000,
		})
	}

	return cs, nil
}
