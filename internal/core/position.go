package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position tracks one symbol's holding with average-cost accounting.
type Position struct {
	Symbol       string
	Quantity     decimal.Decimal
	AvgCost      decimal.Decimal
	CurrentPrice decimal.Decimal

	UnrealizedPnL decimal.Decimal
	RealizedPnL   decimal.Decimal

	EntryDate  time.Time
	LastUpdate time.Time

	Strategy    string
	EntryReason string
}

func NewPosition(symbol string, quantity, price decimal.Decimal, entryDate time.Time) *Position {
	return &Position{
		Symbol:       symbol,
		Quantity:     quantity,
		AvgCost:      price,
		CurrentPrice: price,
		EntryDate:    entryDate,
		LastUpdate:   entryDate,
	}
}

func (p *Position) MarketValue() decimal.Decimal {
	return p.Quantity.Mul(p.CurrentPrice)
}

func (p *Position) CostBasis() decimal.Decimal {
	return p.Quantity.Mul(p.AvgCost)
}

func (p *Position) TotalPnL() decimal.Decimal {
	return p.RealizedPnL.Add(p.UnrealizedPnL)
}

// ReturnPct is a display ratio, not an accounting value.
func (p *Position) ReturnPct() float64 {
	basis := p.CostBasis()
	if basis.IsZero() {
		return 0
	}
	return p.MarketValue().Sub(basis).Div(basis).InexactFloat64() * 100
}

// UpdatePrice marks the position to market. Pure revaluation: no cash and no
// realized effect.
func (p *Position) UpdatePrice(price decimal.Decimal) {
	p.CurrentPrice = price
	p.UnrealizedPnL = price.Sub(p.AvgCost).Mul(p.Quantity)
	p.LastUpdate = time.Now()
}

// AddShares adds a lot and recomputes AvgCost as the cost-weighted average of
// the existing holding and the new lot. CurrentPrice is left alone; callers
// mark to market separately.
func (p *Position) AddShares(quantity, price decimal.Decimal) {
	totalCost := p.CostBasis().Add(quantity.Mul(price))
	totalShares := p.Quantity.Add(quantity)
	if totalShares.IsPositive() {
		p.AvgCost = totalCost.Div(totalShares)
	} else {
		p.AvgCost = decimal.Zero
	}
	p.Quantity = totalShares
}

// RemoveShares reduces the holding, clamping to the held quantity, and returns
// the realized P&L for the removed lot. AvgCost is unchanged by a sale.
func (p *Position) RemoveShares(quantity, price decimal.Decimal) decimal.Decimal {
	if quantity.GreaterThan(p.Quantity) {
		quantity = p.Quantity
	}
	realized := price.Sub(p.AvgCost).Mul(quantity)
	p.RealizedPnL = p.RealizedPnL.Add(realized)
	p.Quantity = p.Quantity.Sub(quantity)
	return realized
}

func (p *Position) IsEmpty() bool {
	return p.Quantity.IsZero()
}
