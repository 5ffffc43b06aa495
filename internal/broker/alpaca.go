package broker

import (
	"context"
	"fmt"
	"strings"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"

	"tradingdesk/internal/config"
	"tradingdesk/internal/core"
	"tradingdesk/types"
)

// AlpacaBroker routes orders to Alpaca. With a paper-trading base URL it is
// safe to run against a live account's paper sibling.
type AlpacaBroker struct {
	client *alpaca.Client
}

func NewAlpacaBroker(cfg config.BrokerConfig) *AlpacaBroker {
	return &AlpacaBroker{
		client: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    cfg.APIKey,
			APISecret: cfg.APISecret,
			BaseURL:   cfg.BaseURL,
		}),
	}
}

func (b *AlpacaBroker) GetAccount(_ context.Context) (*Account, error) {
	acct, err := b.client.GetAccount()
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &Account{
		ID:           acct.ID,
		Cash:         acct.Cash,
		Equity:       acct.Equity,
		BuyingPower:  acct.BuyingPower,
		PortfolioVal: acct.PortfolioValue,
		Blocked:      acct.TradingBlocked,
	}, nil
}

func (b *AlpacaBroker) GetPositions(_ context.Context) ([]BrokerPosition, error) {
	positions, err := b.client.GetPositions()
	if err != nil {
		return nil, fmt.Errorf("get positions: %w", err)
	}
	out := make([]BrokerPosition, 0, len(positions))
	for _, p := range positions {
		bp := BrokerPosition{
			Symbol:   p.Symbol,
			Qty:      p.Qty,
			AvgEntry: p.AvgEntryPrice,
		}
		if p.CurrentPrice != nil {
			bp.CurrentPrice = *p.CurrentPrice
		}
		if p.MarketValue != nil {
			bp.MarketValue = *p.MarketValue
		}
		out = append(out, bp)
	}
	return out, nil
}

func (b *AlpacaBroker) SubmitOrder(_ context.Context, order *core.Order) (*BrokerOrder, error) {
	qty := order.Quantity
	req := alpaca.PlaceOrderRequest{
		Symbol:      order.Symbol,
		Qty:         &qty,
		Side:        alpaca.Side(strings.ToLower(string(order.Side))),
		Type:        toAlpacaType(order.Type),
		TimeInForce: alpaca.Day,
	}
	if !order.LimitPrice.IsZero() {
		limit := order.LimitPrice
		req.LimitPrice = &limit
	}
	if !order.StopPrice.IsZero() {
		stop := order.StopPrice
		req.StopPrice = &stop
	}

	placed, err := b.client.PlaceOrder(req)
	if err != nil {
		return nil, fmt.Errorf("place order %s %s: %w", order.Side, order.Symbol, err)
	}
	return toBrokerOrder(placed), nil
}

func (b *AlpacaBroker) GetOrder(_ context.Context, brokerOrderID string) (*BrokerOrder, error) {
	order, err := b.client.GetOrder(brokerOrderID)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", brokerOrderID, err)
	}
	return toBrokerOrder(order), nil
}

func (b *AlpacaBroker) CancelOrder(_ context.Context, brokerOrderID string) error {
	if err := b.client.CancelOrder(brokerOrderID); err != nil {
		return fmt.Errorf("cancel order %s: %w", brokerOrderID, err)
	}
	return nil
}

func (b *AlpacaBroker) IsMarketOpen(_ context.Context) (bool, error) {
	clock, err := b.client.GetClock()
	if err != nil {
		return false, fmt.Errorf("get clock: %w", err)
	}
	return clock.IsOpen, nil
}

func toAlpacaType(t types.OrderType) alpaca.OrderType {
	switch t {
	case types.TypeLimit:
		return alpaca.Limit
	case types.TypeStop:
		return alpaca.Stop
	case types.TypeStopLimit:
		return alpaca.StopLimit
	default:
		return alpaca.Market
	}
}

func toBrokerOrder(o *alpaca.Order) *BrokerOrder {
	out := &BrokerOrder{
		ID:          o.ID,
		Symbol:      o.Symbol,
		Status:      o.Status,
		FilledQty:   o.FilledQty,
		SubmittedAt: o.SubmittedAt,
	}
	if o.FilledAvgPrice != nil {
		out.FilledAvgPrice = *o.FilledAvgPrice
	}
	if o.FilledAt != nil {
		out.FilledAt = *o.FilledAt
	}
	return out
}
