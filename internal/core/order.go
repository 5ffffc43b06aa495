package core

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"tradingdesk/types"
)

var (
	ErrOrderTerminal = errors.New("order is in a terminal state")
	ErrInvalidFill   = errors.New("fill quantity must be positive")
)

// Order is the lifecycle record of a single trading order. Quantities and
// prices are decimals throughout; a zero LimitPrice/StopPrice means unset.
type Order struct {
	Symbol   string
	Side     types.Side
	Quantity decimal.Decimal
	Type     types.OrderType
	Status   types.OrderStatus

	LimitPrice decimal.Decimal
	StopPrice  decimal.Decimal

	FilledQuantity decimal.Decimal
	AvgFillPrice   decimal.Decimal

	CreatedAt   time.Time
	SubmittedAt time.Time
	FilledAt    time.Time

	Strategy      string
	Reason        string
	BrokerOrderID string
}

func NewOrder(symbol string, side types.Side, quantity decimal.Decimal, orderType types.OrderType) *Order {
	return &Order{
		Symbol:    symbol,
		Side:      side,
		Quantity:  quantity,
		Type:      orderType,
		Status:    types.OrderPending,
		CreatedAt: time.Now(),
	}
}

// Fill applies a (partial) execution at the given price. The quantity is
// clamped to the remaining unfilled amount and AvgFillPrice becomes the
// cost-weighted average across all fills applied so far.
func (o *Order) Fill(quantity, price decimal.Decimal, at time.Time) error {
	if o.Status.IsTerminal() {
		return ErrOrderTerminal
	}
	if !quantity.IsPositive() {
		return ErrInvalidFill
	}
	if remaining := o.RemainingQuantity(); quantity.GreaterThan(remaining) {
		quantity = remaining
	}

	totalFilled := o.FilledQuantity.Add(quantity)
	totalCost := o.FilledQuantity.Mul(o.AvgFillPrice).Add(quantity.Mul(price))

	o.FilledQuantity = totalFilled
	if totalFilled.IsPositive() {
		o.AvgFillPrice = totalCost.Div(totalFilled)
	} else {
		o.AvgFillPrice = price
	}

	if o.FilledQuantity.GreaterThanOrEqual(o.Quantity) {
		o.Status = types.OrderFilled
		o.FilledAt = at
	} else {
		o.Status = types.OrderPartiallyFilled
	}

	if o.SubmittedAt.IsZero() {
		o.SubmittedAt = at
	}
	return nil
}

// Cancel moves the order to CANCELLED. Terminal orders cannot be cancelled.
func (o *Order) Cancel() error {
	if o.Status.IsTerminal() {
		return ErrOrderTerminal
	}
	o.Status = types.OrderCancelled
	return nil
}

// Reject moves the order to REJECTED, recording the reason.
func (o *Order) Reject(reason string) error {
	if o.Status.IsTerminal() {
		return ErrOrderTerminal
	}
	o.Status = types.OrderRejected
	if reason != "" {
		o.Reason = reason
	}
	return nil
}

func (o *Order) IsFilled() bool {
	return o.Status == types.OrderFilled
}

func (o *Order) IsPartiallyFilled() bool {
	return o.Status == types.OrderPartiallyFilled
}

// IsActive reports whether the order can still receive fills.
func (o *Order) IsActive() bool {
	switch o.Status {
	case types.OrderPending, types.OrderSubmitted, types.OrderPartiallyFilled:
		return true
	}
	return false
}

func (o *Order) RemainingQuantity() decimal.Decimal {
	return o.Quantity.Sub(o.FilledQuantity)
}

// NotionalValue estimates the dollar size of the order for pre-trade sizing.
// Prefers fill-price basis, then limit price, then the raw quantity. The raw
// quantity fallback is a rough placeholder, not usable for accounting.
func (o *Order) NotionalValue() decimal.Decimal {
	if o.FilledQuantity.IsPositive() {
		return o.FilledQuantity.Mul(o.AvgFillPrice)
	}
	if !o.LimitPrice.IsZero() {
		return o.Quantity.Mul(o.LimitPrice)
	}
	return o.Quantity
}
