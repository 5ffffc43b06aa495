package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tradingdesk/internal/config"
	"tradingdesk/internal/data"
	"tradingdesk/types"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// weekdayBars produces one flat daily bar per weekday between start and end
// at the given close price.
func weekdayBars(symbol string, start, end time.Time, close decimal.Decimal) []types.Bar {
	var bars []types.Bar
	for t := start; !t.After(end); t = t.AddDate(0, 0, 1) {
		if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
			continue
		}
		bars = append(bars, types.Bar{
			Symbol:    symbol,
			Open:      close,
			High:      close,
			Low:       close,
			Close:     close,
			Volume:    decimal.NewFromInt(1000),
			Timestamp: t,
		})
	}
	return bars
}

type stubStrategy struct {
	name     string
	required int
	scores   map[string]float64
	calls    int
}

func (s *stubStrategy) Name() string      { return s.name }
func (s *stubStrategy) RequiredBars() int { return s.required }

func (s *stubStrategy) GenerateSignals(map[string][]types.Bar) map[string]float64 {
	s.calls++
	return s.scores
}

func testBacktestConfig() config.BacktestConfig {
	return config.BacktestConfig{
		InitialCapital:     decimal.NewFromInt(100000),
		RebalanceFrequency: "weekly",
		RebalanceWeekday:   time.Monday,
		SnapshotEvery:      10,
	}
}

func TestRunNoData(t *testing.T) {
	strat := &stubStrategy{name: "none", required: 1}
	engine := NewEngine(strat, data.NewMemoryProvider(nil), testBacktestConfig(), config.DefaultRisk())

	result, err := engine.Run(context.Background(), []string{"AAPL"}, day(2024, 1, 1), day(2024, 1, 31))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Snapshots) != 0 || result.NumTrades != 0 {
		t.Errorf("expected empty result, got %d snapshots, %d trades", len(result.Snapshots), result.NumTrades)
	}
	if strat.calls != 0 {
		t.Errorf("strategy called %d times on empty data", strat.calls)
	}
}

func TestRunWeeklyRebalanceCount(t *testing.T) {
	// 2024-01-01 is a Monday. The range 01-01..01-12 contains exactly two
	// Mondays (the 1st and the 8th).
	start := day(2024, 1, 1)
	end := day(2024, 1, 12)
	provider := data.NewMemoryProvider(map[string][]types.Bar{
		"AAPL": weekdayBars("AAPL", start, end, d("100")),
	})

	strat := &stubStrategy{name: "stub", required: 1, scores: map[string]float64{"AAPL": 80}}
	engine := NewEngine(strat, provider, testBacktestConfig(), config.DefaultRisk())

	if _, err := engine.Run(context.Background(), []string{"AAPL"}, start, end); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strat.calls != 2 {
		t.Errorf("rebalance count = %d, want 2", strat.calls)
	}
}

func TestRunMonthlyRebalanceOnFirstTradingDate(t *testing.T) {
	// 2024-01-25 (Thursday) through 2024-02-05: the first tick opens the
	// January window and 2024-02-01 opens February, so exactly two
	// rebalances.
	start := day(2024, 1, 25)
	end := day(2024, 2, 5)
	provider := data.NewMemoryProvider(map[string][]types.Bar{
		"AAPL": weekdayBars("AAPL", start, end, d("100")),
	})

	cfg := testBacktestConfig()
	cfg.RebalanceFrequency = "monthly"
	strat := &stubStrategy{name: "stub", required: 1, scores: map[string]float64{"AAPL": 80}}
	engine := NewEngine(strat, provider, cfg, config.DefaultRisk())

	if _, err := engine.Run(context.Background(), []string{"AAPL"}, start, end); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strat.calls != 2 {
		t.Errorf("rebalance count = %d, want 2", strat.calls)
	}
}

func TestRunUnknownFrequencyFallsBackToDaily(t *testing.T) {
	// One full trading week, 5 weekdays.
	start := day(2024, 1, 1)
	end := day(2024, 1, 5)
	provider := data.NewMemoryProvider(map[string][]types.Bar{
		"AAPL": weekdayBars("AAPL", start, end, d("100")),
	})

	cfg := testBacktestConfig()
	cfg.RebalanceFrequency = "fortnightly"
	strat := &stubStrategy{name: "stub", required: 1, scores: map[string]float64{"AAPL": 80}}
	engine := NewEngine(strat, provider, cfg, config.DefaultRisk())

	if _, err := engine.Run(context.Background(), []string{"AAPL"}, start, end); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strat.calls != 5 {
		t.Errorf("rebalance count = %d, want 5", strat.calls)
	}
}

func TestRunRespectsMaxPositions(t *testing.T) {
	start := day(2024, 1, 1)
	end := day(2024, 1, 12)
	symbols := []string{"AAA", "BBB", "CCC", "DDD", "EEE"}
	bars := make(map[string][]types.Bar)
	for _, s := range symbols {
		bars[s] = weekdayBars(s, start, end, d("50"))
	}
	provider := data.NewMemoryProvider(bars)

	scores := map[string]float64{"AAA": 90, "BBB": 80, "CCC": 70, "DDD": 60, "EEE": 55}
	strat := &stubStrategy{name: "stub", required: 1, scores: scores}

	riskCfg := config.DefaultRisk()
	riskCfg.MaxPositions = 2
	engine := NewEngine(strat, provider, testBacktestConfig(), riskCfg)

	result, err := engine.Run(context.Background(), symbols, start, end)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := len(result.Portfolio.Positions); got != 2 {
		t.Fatalf("final positions = %d, want 2", got)
	}
	for symbol := range result.Portfolio.Positions {
		if symbol != "AAA" && symbol != "BBB" {
			t.Errorf("unexpected holding %s, want top-scored symbols only", symbol)
		}
	}
}

func TestRunLiquidatesDroppedSymbols(t *testing.T) {
	start := day(2024, 1, 1)
	end := day(2024, 1, 12)
	provider := data.NewMemoryProvider(map[string][]types.Bar{
		"AAA": weekdayBars("AAA", start, end, d("100")),
		"BBB": weekdayBars("BBB", start, end, d("100")),
	})

	strat := &flipStrategy{}
	riskCfg := config.DefaultRisk()
	riskCfg.MaxPositions = 1
	engine := NewEngine(strat, provider, testBacktestConfig(), riskCfg)

	result, err := engine.Run(context.Background(), []string{"AAA", "BBB"}, start, end)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// First Monday buys AAA, second Monday drops it for BBB: one buy, one
	// sell, one buy.
	if result.NumTrades != 3 {
		t.Errorf("trades = %d, want 3", result.NumTrades)
	}
	if _, ok := result.Portfolio.Positions["BBB"]; !ok || len(result.Portfolio.Positions) != 1 {
		t.Errorf("final holdings = %+v, want only BBB", result.Portfolio.Positions)
	}
}

// flipStrategy prefers AAA on the first call and BBB afterwards.
type flipStrategy struct {
	calls int
}

func (f *flipStrategy) Name() string      { return "flip" }
func (f *flipStrategy) RequiredBars() int { return 1 }

func (f *flipStrategy) GenerateSignals(map[string][]types.Bar) map[string]float64 {
	f.calls++
	if f.calls == 1 {
		return map[string]float64{"AAA": 90, "BBB": 10}
	}
	return map[string]float64{"AAA": 10, "BBB": 90}
}

func TestRunSnapshotCadence(t *testing.T) {
	start := day(2024, 1, 1)
	end := day(2024, 1, 31) // 23 weekdays
	provider := data.NewMemoryProvider(map[string][]types.Bar{
		"AAA": weekdayBars("AAA", start, end, d("100")),
	})

	strat := &stubStrategy{name: "stub", required: 1, scores: map[string]float64{"AAA": 80}}
	engine := NewEngine(strat, provider, testBacktestConfig(), config.DefaultRisk())

	result, err := engine.Run(context.Background(), []string{"AAA"}, start, end)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// Ticks 0, 10, 20 plus the final tick (22).
	if got := len(result.Snapshots); got != 4 {
		t.Errorf("snapshots = %d, want 4", got)
	}
	last := result.Snapshots[len(result.Snapshots)-1]
	if !last.Date.Equal(day(2024, 1, 31)) {
		t.Errorf("final snapshot date = %s, want 2024-01-31", last.Date.Format("2006-01-02"))
	}
}

func TestRunEquityTracksPrices(t *testing.T) {
	start := day(2024, 1, 1)
	end := day(2024, 1, 12)
	// Price doubles midway: buy at 100, mark at 200.
	bars := weekdayBars("AAA", start, day(2024, 1, 5), d("100"))
	bars = append(bars, weekdayBars("AAA", day(2024, 1, 8), end, d("200"))...)
	provider := data.NewMemoryProvider(map[string][]types.Bar{"AAA": bars})

	strat := &stubStrategy{name: "stub", required: 1, scores: map[string]float64{"AAA": 80}}
	riskCfg := config.DefaultRisk()
	riskCfg.MaxPositions = 1
	engine := NewEngine(strat, provider, testBacktestConfig(), riskCfg)

	result, err := engine.Run(context.Background(), []string{"AAA"}, start, end)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// 1000 shares bought at 100, marked at 200: equity 200000.
	if result.FinalEquity.Cmp(d("200000")) != 0 {
		t.Errorf("final equity = %s, want 200000", result.FinalEquity)
	}
	if result.TotalReturnPct != 100 {
		t.Errorf("total return = %.2f%%, want 100%%", result.TotalReturnPct)
	}
	if result.MaxDrawdownPct != 0 {
		t.Errorf("max drawdown = %.2f%%, want 0", result.MaxDrawdownPct)
	}
}

func day(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}
