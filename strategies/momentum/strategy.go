package momentum

import (
	"fmt"

	"github.com/shopspring/decimal"

	"tradingdesk/types"
)

// Strategy scores symbols on moving average crossovers. A fast average
// crossing above the slow one is the strongest buy; scores map the
// crossover state onto the 0-100 scale with 50 neutral.
type Strategy struct {
	fastPeriod int
	slowPeriod int
}

func New(fastPeriod, slowPeriod int) *Strategy {
	return &Strategy{fastPeriod: fastPeriod, slowPeriod: slowPeriod}
}

func Default() *Strategy {
	return New(20, 50)
}

func (s *Strategy) Name() string {
	return fmt.Sprintf("Momentum(%d/%d)", s.fastPeriod, s.slowPeriod)
}

// RequiredBars leaves headroom beyond the slow window so the previous-bar
// averages are well defined.
func (s *Strategy) RequiredBars() int {
	return s.slowPeriod + 10
}

func (s *Strategy) GenerateSignals(data map[string][]types.Bar) map[string]float64 {
	signals := make(map[string]float64)
	for symbol, bars := range data {
		if len(bars) < s.RequiredBars() {
			continue
		}
		closes := make([]decimal.Decimal, len(bars))
		for i, b := range bars {
			closes[i] = b.Close
		}

		currentFast := sma(closes, s.fastPeriod, len(closes))
		currentSlow := sma(closes, s.slowPeriod, len(closes))
		prevFast := sma(closes, s.fastPeriod, len(closes)-1)
		prevSlow := sma(closes, s.slowPeriod, len(closes)-1)

		var signal float64
		switch {
		case currentFast.GreaterThan(currentSlow) && prevFast.LessThanOrEqual(prevSlow):
			signal = 1.0 // golden cross
		case currentFast.GreaterThan(currentSlow):
			signal = 0.5
		case currentFast.LessThan(currentSlow) && prevFast.GreaterThanOrEqual(prevSlow):
			signal = -1.0 // death cross
		default:
			signal = -0.5
		}
		signals[symbol] = (signal + 1.0) * 50.0
	}
	return signals
}

// sma averages the window of closes ending just before index end.
func sma(closes []decimal.Decimal, period, end int) decimal.Decimal {
	if end < period || period <= 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, c := range closes[end-period : end] {
		sum = sum.Add(c)
	}
	return sum.Div(decimal.NewFromInt(int64(period)))
}
