package backtest

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"tradingdesk/internal/core"
	"tradingdesk/internal/risk"
)

// Result aggregates everything a finished simulation produced: the sampled
// equity curve, period returns between samples, and headline statistics.
type Result struct {
	Snapshots      []Snapshot
	Orders         []*core.Order
	Returns        []float64
	FinalEquity    decimal.Decimal
	TotalReturnPct float64
	MaxDrawdownPct float64
	SharpeRatio    float64
	WinRate        float64
	NumTrades      int
	Portfolio      core.Summary
}

func newResult(portfolio *core.Portfolio, snapshots []Snapshot) *Result {
	equity := make([]float64, len(snapshots))
	for i, s := range snapshots {
		equity[i] = s.Equity.InexactFloat64()
	}
	returns := make([]float64, 0, len(equity))
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			continue
		}
		returns = append(returns, equity[i]/equity[i-1]-1)
	}

	return &Result{
		Snapshots:      snapshots,
		Orders:         portfolio.Orders(),
		Returns:        returns,
		FinalEquity:    portfolio.TotalEquity(),
		TotalReturnPct: portfolio.ReturnPct(),
		MaxDrawdownPct: risk.MaxDrawdown(equity) * 100,
		SharpeRatio:    risk.Sharpe(returns, 0),
		WinRate:        risk.WinRate(returns),
		NumTrades:      len(portfolio.Orders()),
		Portfolio:      portfolio.Snapshot(),
	}
}

// Report renders a human-readable summary, one stat per line.
func (r *Result) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "===== Backtest Report =====\n")
	fmt.Fprintf(&b, "Final equity:    %s\n", r.FinalEquity.StringFixed(2))
	fmt.Fprintf(&b, "Total return:    %.2f%%\n", r.TotalReturnPct)
	fmt.Fprintf(&b, "Max drawdown:    %.2f%%\n", r.MaxDrawdownPct)
	fmt.Fprintf(&b, "Sharpe ratio:    %.2f\n", r.SharpeRatio)
	fmt.Fprintf(&b, "Win rate:        %.2f%%\n", r.WinRate*100)
	fmt.Fprintf(&b, "Trades executed: %d\n", r.NumTrades)
	fmt.Fprintf(&b, "Open positions:  %d\n", len(r.Portfolio.Positions))
	fmt.Fprintf(&b, "Cash remaining:  %s\n", r.Portfolio.Cash.StringFixed(2))
	return b.String()
}
