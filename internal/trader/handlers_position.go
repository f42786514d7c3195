package trader

import (
	"encoding/json"
	"fmt"

	"ladder/internal/gateway/exchange"
	"ladder/internal/logger"
	"ladder/internal/position"
)

type closedFact struct {
	Reason  string                `json:"reason"`
	Price   float64               `json:"price"`
	Order   *exchange.OrderResult `json:"order,omitempty"`
	Tracker position.Snapshot     `json:"tracker"`
	Error   string                `json:"error,omitempty"`
}

func (t *Trader) handleManualClose(payload []byte, traceID string) (any, error) {
	var p ManualClosePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode manual close: %w", err)
	}
	live := t.state.Live
	if live == nil {
		return nil, ErrNoActivePosition
	}
	price := p.Price
	if price <= 0 {
		price = t.closeRefPrice(live)
	}
	view := live.view()
	order, err := t.closeLive(p.Reason, price)
	if err != nil {
		return nil, err
	}
	return CloseResult{Position: view, Order: order, Reason: p.Reason}, nil
}

// closeRefPrice is the last observed price, or the entry when no tick arrived yet.
func (t *Trader) closeRefPrice(live *livePosition) float64 {
	if live.lastPrice > 0 {
		return live.lastPrice
	}
	return live.tracker.Snapshot().EntryPrice
}

// closeLive sends the reduce-only close for the live position. The position is
// discarded only after the venue accepts the order.
func (t *Trader) closeLive(reason string, price float64) (*exchange.OrderResult, error) {
	live := t.state.Live
	if live == nil {
		return nil, ErrNoActivePosition
	}
	log := logger.With("position_id", live.id, "symbol", live.symbol)

	ctx, cancel := t.orderContext()
	defer cancel()
	order, err := t.executor.ClosePosition(ctx, exchange.OrderRequest{
		PositionID: live.id,
		Symbol:     live.symbol,
		Side:       live.side(),
		Quantity:   live.size,
		RefPrice:   price,
		Reason:     reason,
	})
	view := live.view()
	if err != nil {
		t.record(EvtCloseFailed, live.id, live.symbol, closedFact{Reason: reason, Price: price, Tracker: view.Tracker, Error: err.Error()})
		log.Error("close order failed", "reason", reason, "price", price, "error", err)
		t.notifyCloseFailed(view, reason, err)
		return nil, &OrderError{Action: "close", Err: err}
	}

	t.state.Live = nil
	t.refreshSnapshot()
	t.record(EvtPositionClosed, live.id, live.symbol, closedFact{Reason: reason, Price: price, Order: order, Tracker: view.Tracker})
	log.Info("position closed", "reason", reason, "price", price, "order_id", order.OrderID, "avg_price", order.AvgPrice)
	t.notifyClosed(view, reason, price, order)
	return order, nil
}
