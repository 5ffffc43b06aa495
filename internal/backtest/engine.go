package backtest

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"

	"tradingdesk/internal/config"
	"tradingdesk/internal/core"
	"tradingdesk/internal/data"
	"tradingdesk/types"
)

// Strategy turns trailing bar windows into per-symbol signal scores. Higher
// scores mean more bullish. Windows passed to GenerateSignals are always at
// least RequiredBars long.
type Strategy interface {
	Name() string
	RequiredBars() int
	GenerateSignals(data map[string][]types.Bar) map[string]float64
}

// Engine runs a walk-forward simulation: one tick per historical trading
// date, marking positions to market and rebalancing into the strategy's
// top-scored symbols on schedule. Ticks are strictly sequential; each
// depends on the portfolio state the previous one left behind.
type Engine struct {
	strategy     Strategy
	provider     data.HistoricalProvider
	cfg          config.BacktestConfig
	maxPositions int

	snapshots []Snapshot
}

// Snapshot is an immutable point-in-time record of the simulated portfolio.
type Snapshot struct {
	Date        time.Time
	Equity      decimal.Decimal
	Cash        decimal.Decimal
	Positions   int
	ReturnPct   float64
	DrawdownPct float64
}

func NewEngine(strategy Strategy, provider data.HistoricalProvider, cfg config.BacktestConfig, riskCfg config.RiskConfig) *Engine {
	if cfg.SnapshotEvery <= 0 {
		cfg.SnapshotEvery = 10
	}
	return &Engine{
		strategy:     strategy,
		provider:     provider,
		cfg:          cfg,
		maxPositions: riskCfg.MaxPositions,
	}
}

// Run simulates the strategy over [start, end]. When no symbol has any
// usable data the run reports an empty result rather than an error.
func (e *Engine) Run(ctx context.Context, symbols []string, start, end time.Time) (*Result, error) {
	log.Printf("starting backtest: %s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))

	hist, err := e.provider.UniverseHistorical(ctx, symbols, start, end)
	if err != nil {
		return nil, err
	}
	if len(hist) == 0 {
		log.Print("no data available for backtest")
		return &Result{}, nil
	}

	portfolio := core.NewPortfolio(e.cfg.InitialCapital)
	dates := tradingDates(hist, start, end)
	rebalance := rebalanceDates(dates, e.cfg)

	e.snapshots = nil
	bar := initProgressBar(len(dates))
	for i, date := range dates {
		prices := make(map[string]decimal.Decimal)
		for symbol, bars := range hist {
			if b, ok := barOn(bars, date); ok {
				prices[symbol] = b.Close
			}
		}
		portfolio.UpdatePrices(prices)

		if rebalance[date] {
			e.rebalance(portfolio, hist, date)
		}

		if i%e.cfg.SnapshotEvery == 0 || i == len(dates)-1 {
			e.snapshots = append(e.snapshots, Snapshot{
				Date:        date,
				Equity:      portfolio.TotalEquity(),
				Cash:        portfolio.Cash(),
				Positions:   portfolio.NumPositions(),
				ReturnPct:   portfolio.ReturnPct(),
				DrawdownPct: portfolio.DrawdownPct(),
			})
		}
		bar.Add(1)
	}

	return newResult(portfolio, e.snapshots), nil
}

// rebalance liquidates holdings that fell out of the strategy's top
// selection and opens equal-weight positions in newly selected symbols.
// Symbols both held and still selected are left untouched.
func (e *Engine) rebalance(portfolio *core.Portfolio, hist map[string][]types.Bar, date time.Time) {
	windows := make(map[string][]types.Bar)
	for symbol, bars := range hist {
		if w, ok := windowUpTo(bars, date, e.strategy.RequiredBars()); ok {
			windows[symbol] = w
		}
	}
	if len(windows) == 0 {
		return
	}

	signals := e.strategy.GenerateSignals(windows)
	if len(signals) == 0 {
		return
	}

	targets := topSymbols(signals, e.maxPositions)
	if len(targets) == 0 {
		return
	}
	positionSize := portfolio.TotalEquity().Div(decimal.NewFromInt(int64(len(targets))))

	// Liquidate everything that dropped out of the target set, at the last
	// marked price.
	for symbol, pos := range portfolio.Positions() {
		if targets[symbol] || pos.IsEmpty() {
			continue
		}
		order := core.NewOrder(symbol, types.SideTypeSell, pos.Quantity, types.TypeMarket)
		order.Strategy = e.strategy.Name()
		if err := order.Fill(pos.Quantity, pos.CurrentPrice, date); err != nil {
			log.Printf("rebalance sell fill %s: %v", symbol, err)
			continue
		}
		if err := portfolio.ExecuteOrder(order); err != nil {
			log.Printf("rebalance sell %s: %v", symbol, err)
		}
	}

	// Open new names with integer share counts.
	for symbol := range targets {
		if portfolio.GetPosition(symbol) != nil {
			continue
		}
		window, ok := windows[symbol]
		if !ok {
			continue
		}
		price := window[len(window)-1].Close
		if !price.IsPositive() {
			continue
		}
		quantity := positionSize.Div(price).Floor()
		if !quantity.IsPositive() {
			continue
		}
		order := core.NewOrder(symbol, types.SideTypeBuy, quantity, types.TypeMarket)
		order.Strategy = e.strategy.Name()
		if err := order.Fill(quantity, price, date); err != nil {
			log.Printf("rebalance buy fill %s: %v", symbol, err)
			continue
		}
		if err := portfolio.ExecuteOrder(order); err != nil {
			log.Printf("rebalance buy %s: %v", symbol, err)
		}
	}
}

// tradingDates is the sorted union of all bar dates within [start, end].
func tradingDates(hist map[string][]types.Bar, start, end time.Time) []time.Time {
	seen := make(map[time.Time]struct{})
	for _, bars := range hist {
		for _, b := range bars {
			d := b.Date()
			if d.Before(start) || d.After(end) {
				continue
			}
			seen[d] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// rebalanceDates selects the simulation dates on which the strategy is
// re-evaluated. Unknown frequencies fall back to daily.
func rebalanceDates(dates []time.Time, cfg config.BacktestConfig) map[time.Time]bool {
	out := make(map[time.Time]bool, len(dates))
	switch cfg.RebalanceFrequency {
	case "weekly":
		for _, d := range dates {
			if d.Weekday() == cfg.RebalanceWeekday {
				out[d] = true
			}
		}
	case "monthly":
		currentMonth := time.Month(0)
		currentYear := 0
		for _, d := range dates {
			if d.Month() != currentMonth || d.Year() != currentYear {
				out[d] = true
				currentMonth = d.Month()
				currentYear = d.Year()
			}
		}
	default: // daily and anything unrecognized
		for _, d := range dates {
			out[d] = true
		}
	}
	return out
}

// barOn finds the bar dated exactly d, if any.
func barOn(bars []types.Bar, d time.Time) (types.Bar, bool) {
	i := sort.Search(len(bars), func(i int) bool { return !bars[i].Date().Before(d) })
	if i < len(bars) && bars[i].Date().Equal(d) {
		return bars[i], true
	}
	return types.Bar{}, false
}

// windowUpTo returns the trailing n bars ending at or before d. Symbols with
// insufficient history report ok=false and are skipped by the caller.
func windowUpTo(bars []types.Bar, d time.Time, n int) ([]types.Bar, bool) {
	i := sort.Search(len(bars), func(i int) bool { return bars[i].Date().After(d) })
	if i < n {
		return nil, false
	}
	return bars[i-n : i], true
}

// topSymbols picks the k highest-scored symbols. Ties break by symbol name
// so a rebalance is deterministic for a given signal set.
func topSymbols(signals map[string]float64, k int) map[string]bool {
	type scored struct {
		symbol string
		score  float64
	}
	ranked := make([]scored, 0, len(signals))
	for symbol, score := range signals {
		ranked = append(ranked, scored{symbol, score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].symbol < ranked[j].symbol
	})
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	out := make(map[string]bool, len(ranked))
	for _, s := range ranked {
		out[s.symbol] = true
	}
	return out
}

func initProgressBar(maxTicks int) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Backtesting in progress..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
