package execution

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"tradingdesk/internal/broker"
	"tradingdesk/internal/core"
	"tradingdesk/internal/risk"
	"tradingdesk/types"
)

var (
	ErrOrderRejected = errors.New("order rejected by risk checks")
	ErrUnknownOrder  = errors.New("unknown order id")
)

// OrderManager gates orders through risk checks, routes approved orders to
// the broker, and applies fills back onto the portfolio. Safe for
// concurrent use.
type OrderManager struct {
	mu sync.Mutex

	broker    broker.Broker
	risk      *risk.Manager
	portfolio *core.Portfolio

	pending map[string]*core.Order // keyed by broker order id
}

func NewOrderManager(b broker.Broker, r *risk.Manager, p *core.Portfolio) *OrderManager {
	return &OrderManager{
		broker:    b,
		risk:      r,
		portfolio: p,
		pending:   make(map[string]*core.Order),
	}
}

// Submit risk-checks the order and hands it to the broker. A failed check
// rejects the order in place and returns ErrOrderRejected with the reason.
func (m *OrderManager) Submit(ctx context.Context, order *core.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Terminal orders cannot be rejected or resubmitted.
	if order.Status.IsTerminal() {
		return fmt.Errorf("submit %s %s: %w", order.Side, order.Symbol, core.ErrOrderTerminal)
	}

	if check := m.risk.CheckTrade(order.Symbol, order.NotionalValue()); !check.Passed {
		order.Reject(check.Reason)
		return fmt.Errorf("%w: %s", ErrOrderRejected, check.Reason)
	}

	placed, err := m.broker.SubmitOrder(ctx, order)
	if err != nil {
		order.Reject(err.Error())
		return fmt.Errorf("submit %s %s: %w", order.Side, order.Symbol, err)
	}

	order.Status = types.OrderSubmitted
	order.BrokerOrderID = placed.ID
	order.SubmittedAt = placed.SubmittedAt
	m.pending[placed.ID] = order
	log.Printf("submitted %s %s x%s, broker id %s", order.Side, order.Symbol, order.Quantity, placed.ID)
	return nil
}

// SyncFills polls the broker for every pending order and applies any new
// fills to the portfolio. Fully settled orders leave the pending set.
func (m *OrderManager) SyncFills(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for id, order := range m.pending {
		brokerOrder, err := m.broker.GetOrder(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("sync %s: %w", id, err))
			continue
		}
		done, err := m.applyBrokerState(order, brokerOrder)
		if err != nil {
			errs = append(errs, fmt.Errorf("apply %s: %w", id, err))
			continue
		}
		if done {
			delete(m.pending, id)
		}
	}
	return errors.Join(errs...)
}

// applyBrokerState reconciles one order with the broker's view. It reports
// whether the order reached a terminal state.
func (m *OrderManager) applyBrokerState(order *core.Order, state *broker.BrokerOrder) (bool, error) {
	newFill := state.FilledQty.Sub(order.FilledQuantity)
	if newFill.IsPositive() {
		at := state.FilledAt
		if at.IsZero() {
			at = time.Now()
		}
		// The broker reports the cumulative average across all fills; back
		// out the incremental fill's price from the cost difference.
		prevCost := order.FilledQuantity.Mul(order.AvgFillPrice)
		deltaCost := state.FilledQty.Mul(state.FilledAvgPrice).Sub(prevCost)
		if err := order.Fill(newFill, deltaCost.Div(newFill), at); err != nil {
			return false, err
		}
	}

	switch state.Status {
	case "filled":
		if err := m.portfolio.ExecuteOrder(order); err != nil {
			return true, err
		}
		return true, nil
	case "canceled", "expired":
		if order.IsActive() {
			order.Cancel()
		}
		return true, nil
	case "rejected":
		if order.IsActive() {
			order.Reject("rejected by broker")
		}
		return true, nil
	}
	return false, nil
}

// Cancel asks the broker to cancel a pending order.
func (m *OrderManager) Cancel(ctx context.Context, brokerOrderID string) error {
	m.mu.Lock()
	order, ok := m.pending[brokerOrderID]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOrder, brokerOrderID)
	}
	if err := m.broker.CancelOrder(ctx, brokerOrderID); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if order.IsActive() {
		order.Cancel()
	}
	delete(m.pending, brokerOrderID)
	return nil
}

// PendingOrders snapshots the orders awaiting fills.
func (m *OrderManager) PendingOrders() []*core.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*core.Order, 0, len(m.pending))
	for _, o := range m.pending {
		out = append(out, o)
	}
	return out
}
