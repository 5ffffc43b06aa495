package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tradingdesk/types"
)

var (
	ErrOrderNotFilled   = errors.New("order is not filled")
	ErrInsufficientCash = errors.New("insufficient cash for buy order")
	ErrNoPosition       = errors.New("no position to sell")
	ErrUnknownSide      = errors.New("unknown order side")
)

// Portfolio is the sole owner and mutator of accounting state: cash, open
// positions and the append-only history of executed orders.
type Portfolio struct {
	cash           decimal.Decimal
	initialCapital decimal.Decimal
	positions      map[string]*Position
	orders         []*Order

	startDate     time.Time
	highWaterMark decimal.Decimal
}

func NewPortfolio(initialCapital decimal.Decimal) *Portfolio {
	p := &Portfolio{
		cash:           initialCapital,
		initialCapital: initialCapital,
		positions:      make(map[string]*Position),
		startDate:      time.Now(),
	}
	p.highWaterMark = p.TotalEquity()
	return p
}

func (p *Portfolio) Cash() decimal.Decimal           { return p.cash }
func (p *Portfolio) InitialCapital() decimal.Decimal { return p.initialCapital }
func (p *Portfolio) HighWaterMark() decimal.Decimal  { return p.highWaterMark }
func (p *Portfolio) StartDate() time.Time            { return p.startDate }

// Orders returns the chronological history of executed orders.
func (p *Portfolio) Orders() []*Order { return p.orders }

func (p *Portfolio) GetPosition(symbol string) *Position {
	return p.positions[strings.ToUpper(symbol)]
}

// Positions returns a copy of the holdings map keyed by symbol.
func (p *Portfolio) Positions() map[string]*Position {
	out := make(map[string]*Position, len(p.positions))
	for sym, pos := range p.positions {
		out[sym] = pos
	}
	return out
}

func (p *Portfolio) NumPositions() int {
	n := 0
	for _, pos := range p.positions {
		if !pos.IsEmpty() {
			n++
		}
	}
	return n
}

func (p *Portfolio) TotalPositionValue() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range p.positions {
		total = total.Add(pos.MarketValue())
	}
	return total
}

func (p *Portfolio) TotalCostBasis() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range p.positions {
		total = total.Add(pos.CostBasis())
	}
	return total
}

func (p *Portfolio) TotalEquity() decimal.Decimal {
	return p.cash.Add(p.TotalPositionValue())
}

func (p *Portfolio) TotalUnrealizedPnL() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range p.positions {
		total = total.Add(pos.UnrealizedPnL)
	}
	return total
}

func (p *Portfolio) TotalRealizedPnL() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range p.positions {
		total = total.Add(pos.RealizedPnL)
	}
	return total
}

func (p *Portfolio) TotalPnL() decimal.Decimal {
	return p.TotalRealizedPnL().Add(p.TotalUnrealizedPnL())
}

// ReturnPct is the portfolio return relative to initial capital, in percent.
func (p *Portfolio) ReturnPct() float64 {
	if p.initialCapital.IsZero() {
		return 0
	}
	return p.TotalEquity().Sub(p.initialCapital).Div(p.initialCapital).InexactFloat64() * 100
}

// DrawdownPct is the equity change relative to the high-water mark, in
// percent. It can read positive between trades: the mark only advances on
// ExecuteOrder, never on price updates.
func (p *Portfolio) DrawdownPct() float64 {
	if !p.highWaterMark.IsPositive() {
		return 0
	}
	return p.TotalEquity().Sub(p.highWaterMark).Div(p.highWaterMark).InexactFloat64() * 100
}

// UpdatePrice marks a single held position to market.
func (p *Portfolio) UpdatePrice(symbol string, price decimal.Decimal) {
	if pos, ok := p.positions[strings.ToUpper(symbol)]; ok {
		pos.UpdatePrice(price)
	}
}

// UpdatePrices marks every referenced held position to market. Cash, realized
// P&L and the high-water mark are untouched.
func (p *Portfolio) UpdatePrices(prices map[string]decimal.Decimal) {
	for symbol, price := range prices {
		p.UpdatePrice(symbol, price)
	}
}

// ExecuteOrder applies a fully-filled order to the portfolio. A buy whose
// cost exceeds available cash and a sell without an existing position are
// rejected with no mutation at all. Oversized sells are clamped to the held
// quantity. On success the order is appended to history and the high-water
// mark is advanced to the post-trade equity when higher.
func (p *Portfolio) ExecuteOrder(order *Order) error {
	if !order.IsFilled() {
		return ErrOrderNotFilled
	}

	symbol := strings.ToUpper(order.Symbol)
	quantity := order.FilledQuantity
	price := order.AvgFillPrice

	switch order.Side {
	case types.SideTypeBuy:
		cost := quantity.Mul(price)
		if cost.GreaterThan(p.cash) {
			return ErrInsufficientCash
		}
		p.cash = p.cash.Sub(cost)

		if pos, ok := p.positions[symbol]; ok {
			pos.AddShares(quantity, price)
		} else {
			pos := NewPosition(symbol, quantity, price, order.FilledAt)
			pos.Strategy = order.Strategy
			pos.EntryReason = order.Reason
			p.positions[symbol] = pos
		}

	case types.SideTypeSell:
		pos, ok := p.positions[symbol]
		if !ok {
			return ErrNoPosition
		}
		if quantity.GreaterThan(pos.Quantity) {
			quantity = pos.Quantity
		}
		pos.RemoveShares(quantity, price)
		p.cash = p.cash.Add(quantity.Mul(price))

		if pos.IsEmpty() {
			delete(p.positions, symbol)
		}

	default:
		return ErrUnknownSide
	}

	if equity := p.TotalEquity(); equity.GreaterThan(p.highWaterMark) {
		p.highWaterMark = equity
	}

	p.orders = append(p.orders, order)
	return nil
}

// PositionWeights returns each holding's share of total equity. Empty when
// equity is zero.
func (p *Portfolio) PositionWeights() map[string]float64 {
	equity := p.TotalEquity()
	if equity.IsZero() {
		return map[string]float64{}
	}
	weights := make(map[string]float64)
	for symbol, pos := range p.positions {
		if !pos.IsEmpty() {
			weights[symbol] = pos.MarketValue().Div(equity).InexactFloat64()
		}
	}
	return weights
}

// SectorExposure aggregates position weights by sector. Symbols missing from
// the sector map fall into "UNKNOWN".
func (p *Portfolio) SectorExposure(sectorMap map[string]string) map[string]float64 {
	sectorValues := make(map[string]decimal.Decimal)
	for symbol, pos := range p.positions {
		if pos.IsEmpty() {
			continue
		}
		sector, ok := sectorMap[symbol]
		if !ok {
			sector = "UNKNOWN"
		}
		sectorValues[sector] = sectorValues[sector].Add(pos.MarketValue())
	}

	equity := p.TotalEquity()
	if equity.IsZero() {
		return map[string]float64{}
	}
	exposures := make(map[string]float64, len(sectorValues))
	for sector, value := range sectorValues {
		exposures[sector] = value.Div(equity).InexactFloat64()
	}
	return exposures
}

// PositionSummary is a point-in-time view of one holding.
type PositionSummary struct {
	Symbol        string          `json:"symbol"`
	Quantity      decimal.Decimal `json:"quantity"`
	AvgCost       decimal.Decimal `json:"avgCost"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	MarketValue   decimal.Decimal `json:"marketValue"`
	UnrealizedPnL decimal.Decimal `json:"unrealizedPnl"`
	RealizedPnL   decimal.Decimal `json:"realizedPnl"`
}

// Summary is a point-in-time view of the whole portfolio.
type Summary struct {
	Cash               decimal.Decimal            `json:"cash"`
	InitialCapital     decimal.Decimal            `json:"initialCapital"`
	TotalEquity        decimal.Decimal            `json:"totalEquity"`
	TotalPositionValue decimal.Decimal            `json:"totalPositionValue"`
	TotalUnrealizedPnL decimal.Decimal            `json:"totalUnrealizedPnl"`
	TotalRealizedPnL   decimal.Decimal            `json:"totalRealizedPnl"`
	ReturnPct          float64                    `json:"returnPct"`
	DrawdownPct        float64                    `json:"drawdownPct"`
	HighWaterMark      decimal.Decimal            `json:"highWaterMark"`
	NumPositions       int                        `json:"numPositions"`
	Positions          map[string]PositionSummary `json:"positions"`
	PositionWeights    map[string]float64         `json:"positionWeights"`
}

func (p *Portfolio) Snapshot() Summary {
	s := Summary{
		Cash:               p.cash,
		InitialCapital:     p.initialCapital,
		TotalEquity:        p.TotalEquity(),
		TotalPositionValue: p.TotalPositionValue(),
		TotalUnrealizedPnL: p.TotalUnrealizedPnL(),
		TotalRealizedPnL:   p.TotalRealizedPnL(),
		ReturnPct:          p.ReturnPct(),
		DrawdownPct:        p.DrawdownPct(),
		HighWaterMark:      p.highWaterMark,
		NumPositions:       p.NumPositions(),
		Positions:          make(map[string]PositionSummary, len(p.positions)),
		PositionWeights:    p.PositionWeights(),
	}
	for sym, pos := range p.positions {
		s.Positions[sym] = PositionSummary{
			Symbol:        pos.Symbol,
			Quantity:      pos.Quantity,
			AvgCost:       pos.AvgCost,
			CurrentPrice:  pos.CurrentPrice,
			MarketValue:   pos.MarketValue(),
			UnrealizedPnL: pos.UnrealizedPnL,
			RealizedPnL:   pos.RealizedPnL,
		}
	}
	return s
}
