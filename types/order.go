package types

type Side string

type OrderType string

type OrderStatus string

const (
	SideTypeBuy  Side = "BUY"
	SideTypeSell Side = "SELL"

	TypeMarket    OrderType = "MARKET"
	TypeLimit     OrderType = "LIMIT"
	TypeStop      OrderType = "STOP"
	TypeStopLimit OrderType = "STOP_LIMIT"

	OrderPending         OrderStatus = "ORDER_PENDING"
	OrderSubmitted       OrderStatus = "ORDER_SUBMITTED"
	OrderPartiallyFilled OrderStatus = "ORDER_PARTIALLY_FILLED"
	OrderFilled          OrderStatus = "ORDER_FILLED"
	OrderCancelled       OrderStatus = "ORDER_CANCELLED"
	OrderRejected        OrderStatus = "ORDER_REJECTED"
	OrderExpired         OrderStatus = "ORDER_EXPIRED"
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderFilled, OrderCancelled, OrderRejected, OrderExpired:
		return true
	}
	return false
}
