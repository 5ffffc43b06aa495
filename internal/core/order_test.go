package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tradingdesk/types"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestOrderFill(t *testing.T) {
	type fill struct {
		qty   string
		price string
	}
	tests := []struct {
		name        string
		quantity    string
		fills       []fill
		wantStatus  types.OrderStatus
		wantFilled  string
		wantAvg     string
		wantRemains string
	}{
		{
			name:        "single full fill",
			quantity:    "10",
			fills:       []fill{{"10", "100"}},
			wantStatus:  types.OrderFilled,
			wantFilled:  "10",
			wantAvg:     "100",
			wantRemains: "0",
		},
		{
			name:        "partial fill",
			quantity:    "10",
			fills:       []fill{{"4", "100"}},
			wantStatus:  types.OrderPartiallyFilled,
			wantFilled:  "4",
			wantAvg:     "100",
			wantRemains: "6",
		},
		{
			name:        "two fills weighted average",
			quantity:    "10",
			fills:       []fill{{"5", "100"}, {"5", "120"}},
			wantStatus:  types.OrderFilled,
			wantFilled:  "10",
			wantAvg:     "110",
			wantRemains: "0",
		},
		{
			name:        "overfill clamped to remaining",
			quantity:    "10",
			fills:       []fill{{"6", "100"}, {"100", "110"}},
			wantStatus:  types.OrderFilled,
			wantFilled:  "10",
			wantAvg:     "104",
			wantRemains: "0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOrder("AAPL", types.SideTypeBuy, d(tt.quantity), types.TypeMarket)
			for _, f := range tt.fills {
				if err := o.Fill(d(f.qty), d(f.price), time.UnixMilli(1)); err != nil {
					t.Fatalf("Fill() error = %v", err)
				}
			}
			if o.Status != tt.wantStatus {
				t.Errorf("status = %v, want %v", o.Status, tt.wantStatus)
			}
			if !o.FilledQuantity.Equal(d(tt.wantFilled)) {
				t.Errorf("filled = %s, want %s", o.FilledQuantity, tt.wantFilled)
			}
			if !o.AvgFillPrice.Equal(d(tt.wantAvg)) {
				t.Errorf("avg fill price = %s, want %s", o.AvgFillPrice, tt.wantAvg)
			}
			if !o.RemainingQuantity().Equal(d(tt.wantRemains)) {
				t.Errorf("remaining = %s, want %s", o.RemainingQuantity(), tt.wantRemains)
			}
			if o.RemainingQuantity().IsNegative() {
				t.Errorf("remaining went negative: %s", o.RemainingQuantity())
			}
			if o.SubmittedAt.IsZero() {
				t.Error("SubmittedAt not set on first fill")
			}
		})
	}
}

func TestOrderTerminalTransitions(t *testing.T) {
	t.Run("fill after cancel", func(t *testing.T) {
		o := NewOrder("AAPL", types.SideTypeBuy, d("10"), types.TypeMarket)
		if err := o.Cancel(); err != nil {
			t.Fatalf("Cancel() error = %v", err)
		}
		if err := o.Fill(d("1"), d("100"), time.UnixMilli(1)); !errors.Is(err, ErrOrderTerminal) {
			t.Errorf("Fill() after cancel error = %v, want ErrOrderTerminal", err)
		}
	})

	t.Run("cancel a filled order", func(t *testing.T) {
		o := NewOrder("AAPL", types.SideTypeBuy, d("10"), types.TypeMarket)
		if err := o.Fill(d("10"), d("100"), time.UnixMilli(1)); err != nil {
			t.Fatalf("Fill() error = %v", err)
		}
		if err := o.Cancel(); !errors.Is(err, ErrOrderTerminal) {
			t.Errorf("Cancel() on filled order error = %v, want ErrOrderTerminal", err)
		}
		if o.Status != types.OrderFilled {
			t.Errorf("status mutated to %v", o.Status)
		}
	})

	t.Run("reject then reject again", func(t *testing.T) {
		o := NewOrder("AAPL", types.SideTypeBuy, d("10"), types.TypeMarket)
		if err := o.Reject("risk limit"); err != nil {
			t.Fatalf("Reject() error = %v", err)
		}
		if o.Reason != "risk limit" {
			t.Errorf("reason = %q", o.Reason)
		}
		if err := o.Reject("other"); !errors.Is(err, ErrOrderTerminal) {
			t.Errorf("second Reject() error = %v, want ErrOrderTerminal", err)
		}
		if o.Reason != "risk limit" {
			t.Errorf("reason overwritten to %q", o.Reason)
		}
	})

	t.Run("invalid fill quantity", func(t *testing.T) {
		o := NewOrder("AAPL", types.SideTypeBuy, d("10"), types.TypeMarket)
		if err := o.Fill(d("0"), d("100"), time.UnixMilli(1)); !errors.Is(err, ErrInvalidFill) {
			t.Errorf("Fill(0) error = %v, want ErrInvalidFill", err)
		}
	})
}

func TestOrderDerivedProperties(t *testing.T) {
	o := NewOrder("AAPL", types.SideTypeBuy, d("10"), types.TypeLimit)
	o.LimitPrice = d("50")

	if !o.IsActive() {
		t.Error("pending order should be active")
	}
	if !o.NotionalValue().Equal(d("500")) {
		t.Errorf("notional with limit price = %s, want 500", o.NotionalValue())
	}

	if err := o.Fill(d("4"), d("49"), time.UnixMilli(1)); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if !o.IsPartiallyFilled() || !o.IsActive() {
		t.Errorf("status = %v, want partially filled and active", o.Status)
	}
	if !o.NotionalValue().Equal(d("196")) {
		t.Errorf("notional with fills = %s, want 196", o.NotionalValue())
	}

	// No limit and no fills: raw quantity fallback.
	m := NewOrder("MSFT", types.SideTypeBuy, d("7"), types.TypeMarket)
	if !m.NotionalValue().Equal(d("7")) {
		t.Errorf("notional fallback = %s, want 7", m.NotionalValue())
	}
}
