package momentum

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tradingdesk/types"
)

// barsFromCloses builds one daily bar per close value.
func barsFromCloses(symbol string, closes []float64) []types.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, len(closes))
	for i, c := range closes {
		price := decimal.NewFromFloat(c)
		bars[i] = types.Bar{
			Symbol:    symbol,
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    decimal.NewFromInt(1000),
			Timestamp: start.AddDate(0, 0, i),
		}
	}
	return bars
}

func TestGenerateSignalsGoldenCross(t *testing.T) {
	strat := New(2, 4)

	// Flat at 100, then a sharp rally on the final bar: fast average jumps
	// above the slow one exactly at the end.
	closes := make([]float64, strat.RequiredBars())
	for i := range closes {
		closes[i] = 100
	}
	closes[len(closes)-1] = 140

	signals := strat.GenerateSignals(map[string][]types.Bar{
		"AAPL": barsFromCloses("AAPL", closes),
	})
	if got := signals["AAPL"]; got != 100 {
		t.Errorf("golden cross score = %.1f, want 100", got)
	}
}

func TestGenerateSignalsDeathCross(t *testing.T) {
	strat := New(2, 4)

	closes := make([]float64, strat.RequiredBars())
	for i := range closes {
		closes[i] = 100
	}
	closes[len(closes)-1] = 60

	signals := strat.GenerateSignals(map[string][]types.Bar{
		"AAPL": barsFromCloses("AAPL", closes),
	})
	if got := signals["AAPL"]; got != 0 {
		t.Errorf("death cross score = %.1f, want 0", got)
	}
}

func TestGenerateSignalsSustainedTrend(t *testing.T) {
	strat := New(2, 4)

	// Steady uptrend: fast stays above slow, no fresh cross.
	closes := make([]float64, strat.RequiredBars())
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	signals := strat.GenerateSignals(map[string][]types.Bar{
		"AAPL": barsFromCloses("AAPL", closes),
	})
	if got := signals["AAPL"]; got != 75 {
		t.Errorf("sustained uptrend score = %.1f, want 75", got)
	}
}

func TestGenerateSignalsSkipsShortHistory(t *testing.T) {
	strat := Default()

	signals := strat.GenerateSignals(map[string][]types.Bar{
		"AAPL": barsFromCloses("AAPL", []float64{100, 101, 102}),
	})
	if _, ok := signals["AAPL"]; ok {
		t.Error("expected no signal for insufficient history")
	}
}
