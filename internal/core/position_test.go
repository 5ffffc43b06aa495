package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestPositionAddShares(t *testing.T) {
	type lot struct {
		qty   string
		price string
	}
	tests := []struct {
		name     string
		lots     []lot
		wantQty  string
		wantCost string
	}{
		{
			name:     "two equal lots",
			lots:     []lot{{"10", "100"}, {"10", "120"}},
			wantQty:  "20",
			wantCost: "110",
		},
		{
			name:     "uneven lots",
			lots:     []lot{{"10", "100"}, {"5", "130"}},
			wantQty:  "15",
			wantCost: "110",
		},
		{
			name:     "order of lots does not matter",
			lots:     []lot{{"5", "130"}, {"10", "100"}},
			wantQty:  "15",
			wantCost: "110",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := tt.lots[0]
			pos := NewPosition("AAPL", d(first.qty), d(first.price), time.UnixMilli(1))
			for _, l := range tt.lots[1:] {
				pos.AddShares(d(l.qty), d(l.price))
			}
			if !pos.Quantity.Equal(d(tt.wantQty)) {
				t.Errorf("quantity = %s, want %s", pos.Quantity, tt.wantQty)
			}
			if !pos.AvgCost.Equal(d(tt.wantCost)) {
				t.Errorf("avg cost = %s, want %s", pos.AvgCost, tt.wantCost)
			}
		})
	}
}

func TestPositionAddSharesKeepsMark(t *testing.T) {
	pos := NewPosition("AAPL", d("10"), d("100"), time.UnixMilli(1))
	pos.UpdatePrice(d("105"))
	pos.AddShares(d("10"), d("120"))

	if !pos.CurrentPrice.Equal(d("105")) {
		t.Errorf("current price = %s, want unchanged 105", pos.CurrentPrice)
	}
}

func TestPositionRemoveShares(t *testing.T) {
	tests := []struct {
		name         string
		removeQty    string
		removePrice  string
		wantRealized string
		wantQty      string
	}{
		{"partial sale with gain", "15", "130", "300", "5"},
		{"partial sale with loss", "5", "90", "-100", "15"},
		{"full sale", "20", "110", "0", "0"},
		{"oversized sale clamped", "50", "120", "200", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := NewPosition("AAPL", d("20"), d("110"), time.UnixMilli(1))
			realized := pos.RemoveShares(d(tt.removeQty), d(tt.removePrice))
			if !realized.Equal(d(tt.wantRealized)) {
				t.Errorf("realized = %s, want %s", realized, tt.wantRealized)
			}
			if !pos.RealizedPnL.Equal(d(tt.wantRealized)) {
				t.Errorf("accumulated realized = %s, want %s", pos.RealizedPnL, tt.wantRealized)
			}
			if !pos.Quantity.Equal(d(tt.wantQty)) {
				t.Errorf("quantity = %s, want %s", pos.Quantity, tt.wantQty)
			}
			if !pos.AvgCost.Equal(d("110")) {
				t.Errorf("avg cost changed on sale: %s", pos.AvgCost)
			}
		})
	}
}

func TestPositionUpdatePrice(t *testing.T) {
	pos := NewPosition("AAPL", d("20"), d("110"), time.UnixMilli(1))
	pos.UpdatePrice(d("120"))

	if !pos.UnrealizedPnL.Equal(d("200")) {
		t.Errorf("unrealized = %s, want 200", pos.UnrealizedPnL)
	}
	if !pos.MarketValue().Equal(d("2400")) {
		t.Errorf("market value = %s, want 2400", pos.MarketValue())
	}
	if !pos.RealizedPnL.Equal(decimal.Zero) {
		t.Errorf("mark to market touched realized: %s", pos.RealizedPnL)
	}
}

func TestPositionIsEmpty(t *testing.T) {
	pos := NewPosition("AAPL", d("5"), d("100"), time.UnixMilli(1))
	if pos.IsEmpty() {
		t.Error("non-zero position reported empty")
	}
	pos.RemoveShares(d("5"), d("100"))
	if !pos.IsEmpty() {
		t.Error("zero position not reported empty")
	}
}
