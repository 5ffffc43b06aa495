package broker

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"tradingdesk/internal/core"
)

// Account is a point-in-time view of the trading account at the venue.
type Account struct {
	ID           string
	Cash         decimal.Decimal
	Equity       decimal.Decimal
	BuyingPower  decimal.Decimal
	PortfolioVal decimal.Decimal
	Blocked      bool
}

// BrokerOrder is the venue's view of a submitted order.
type BrokerOrder struct {
	ID             string
	Symbol         string
	Status         string
	FilledQty      decimal.Decimal
	FilledAvgPrice decimal.Decimal
	SubmittedAt    time.Time
	FilledAt       time.Time
}

// BrokerPosition is a holding as reported by the venue.
type BrokerPosition struct {
	Symbol       string
	Qty          decimal.Decimal
	AvgEntry     decimal.Decimal
	CurrentPrice decimal.Decimal
	MarketValue  decimal.Decimal
}

// Broker abstracts the trading venue. Implementations submit orders built
// by the execution layer and report back account and fill state.
type Broker interface {
	GetAccount(ctx context.Context) (*Account, error)
	GetPositions(ctx context.Context) ([]BrokerPosition, error)
	SubmitOrder(ctx context.Context, order *core.Order) (*BrokerOrder, error)
	GetOrder(ctx context.Context, brokerOrderID string) (*BrokerOrder, error)
	CancelOrder(ctx context.Context, brokerOrderID string) error
	IsMarketOpen(ctx context.Context) (bool, error)
}
