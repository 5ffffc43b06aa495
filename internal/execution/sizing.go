package execution

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/shopspring/decimal"

	"tradingdesk/internal/core"
	"tradingdesk/types"
)

var ErrShortNotSupported = errors.New("short positions are not supported")

// SizerConfig tunes how signal scores become orders. Scores run 0..100 with
// 50 neutral; symbols above LongThreshold are sized long, symbols below
// ShortThreshold would be shorts and are refused.
type SizerConfig struct {
	NotionalPct    float64 // fraction of equity per name
	MaxNames       int
	LongThreshold  float64
	ShortThreshold float64
}

func DefaultSizerConfig() SizerConfig {
	return SizerConfig{
		NotionalPct:    0.12,
		MaxNames:       5,
		LongThreshold:  58,
		ShortThreshold: 42,
	}
}

// Sizer converts strategy scores into concrete orders against the live
// portfolio, trading only the delta between target and current holdings.
type Sizer struct {
	cfg       SizerConfig
	portfolio *core.Portfolio
}

func NewSizer(cfg SizerConfig, portfolio *core.Portfolio) *Sizer {
	return &Sizer{cfg: cfg, portfolio: portfolio}
}

// SignalsToOrders ranks signals by conviction (distance from neutral) and
// emits delta orders for the strongest MaxNames. A short-biased score on any
// selected symbol aborts with ErrShortNotSupported rather than silently
// skipping it.
func (s *Sizer) SignalsToOrders(signals map[string]float64, prices map[string]decimal.Decimal) ([]*core.Order, error) {
	type conviction struct {
		symbol string
		score  float64
	}
	ranked := make([]conviction, 0, len(signals))
	for symbol, score := range signals {
		if score > s.cfg.ShortThreshold && score < s.cfg.LongThreshold {
			continue // no conviction either way
		}
		ranked = append(ranked, conviction{symbol, score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		di := absFrom(ranked[i].score, 50)
		dj := absFrom(ranked[j].score, 50)
		if di != dj {
			return di > dj
		}
		return ranked[i].symbol < ranked[j].symbol
	})
	if s.cfg.MaxNames > 0 && len(ranked) > s.cfg.MaxNames {
		ranked = ranked[:s.cfg.MaxNames]
	}

	equity := s.portfolio.TotalEquity()
	notional := equity.Mul(decimal.NewFromFloat(s.cfg.NotionalPct))

	var orders []*core.Order
	for _, c := range ranked {
		if c.score <= s.cfg.ShortThreshold {
			return nil, fmt.Errorf("%s scored %.1f: %w", c.symbol, c.score, ErrShortNotSupported)
		}

		price, ok := prices[c.symbol]
		if !ok || !price.IsPositive() {
			log.Printf("sizing: no price for %s, skipping", c.symbol)
			continue
		}

		target := notional.Div(price).Floor()
		var held decimal.Decimal
		if pos := s.portfolio.GetPosition(c.symbol); pos != nil {
			held = pos.Quantity
		}

		delta := target.Sub(held)
		if delta.IsZero() {
			continue
		}
		side := types.SideTypeBuy
		if delta.IsNegative() {
			side = types.SideTypeSell
			delta = delta.Neg()
		}
		orders = append(orders, core.NewOrder(c.symbol, side, delta, types.TypeMarket))
	}
	return orders, nil
}

func absFrom(score, center float64) float64 {
	if score < center {
		return center - score
	}
	return score - center
}
