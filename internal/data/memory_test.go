package data

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tradingdesk/types"
)

func dayBar(symbol string, year int, month time.Month, day int, close string) types.Bar {
	c := decimal.RequireFromString(close)
	return types.Bar{
		Symbol:    symbol,
		Open:      c,
		High:      c,
		Low:       c,
		Close:     c,
		Volume:    decimal.NewFromInt(1000),
		Timestamp: time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
	}
}

func TestMemoryProviderFiltersAndSorts(t *testing.T) {
	provider := NewMemoryProvider(map[string][]types.Bar{
		"AAPL": {
			dayBar("AAPL", 2024, time.January, 5, "102"),
			dayBar("AAPL", 2024, time.January, 3, "100"),
			dayBar("AAPL", 2024, time.January, 9, "104"),
		},
		"MSFT": {
			dayBar("MSFT", 2023, time.December, 1, "300"),
		},
	})

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 7, 0, 0, 0, 0, time.UTC)

	got, err := provider.UniverseHistorical(context.Background(), []string{"AAPL", "MSFT", "NVDA"}, start, end)
	if err != nil {
		t.Fatalf("UniverseHistorical() error = %v", err)
	}

	if _, ok := got["MSFT"]; ok {
		t.Error("MSFT outside range should be absent")
	}
	if _, ok := got["NVDA"]; ok {
		t.Error("unknown symbol should be absent")
	}

	bars := got["AAPL"]
	if len(bars) != 2 {
		t.Fatalf("got %d AAPL bars, want 2", len(bars))
	}
	if !bars[0].Timestamp.Before(bars[1].Timestamp) {
		t.Error("bars not sorted oldest first")
	}
	if !bars[0].Close.Equal(decimal.RequireFromString("100")) {
		t.Errorf("first close = %s, want 100", bars[0].Close)
	}
}
