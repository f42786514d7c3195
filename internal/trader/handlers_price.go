package trader

import (
	"encoding/json"
	"fmt"
	"time"

	"ladder/internal/logger"
	"ladder/internal/pkg/symbol"
	"ladder/internal/position"
)

func (t *Trader) handlePriceUpdate(payload []byte, traceID string) (any, error) {
	var p PriceUpdatePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode price update: %w", err)
	}
	live := t.state.Live
	if live == nil {
		return nil, ErrNoActivePosition
	}
	tick := p.Tick
	if tick.Symbol != "" && !symbol.Same(tick.Symbol, live.symbol) {
		return nil, fmt.Errorf("%w: got %s, tracking %s", ErrSymbolMismatch, tick.Symbol, live.symbol)
	}

	decision := live.tracker.Observe(tick.Price)
	live.lastPrice = tick.Price
	live.lastPriceAt = time.Now()
	t.publishEvents(live, decision.Events)

	res := PriceResult{
		PositionID: live.id,
		Symbol:     live.symbol,
		Decision:   decision,
	}
	if decision.Exit() || live.pendingExit {
		if live.pendingExit && !decision.Exit() {
			logger.With("position_id", live.id, "symbol", live.symbol).
				Warn("retrying close after failed exit", "price", tick.Price)
		}
		// an exit once decided stands even if price recovers above the stop
		res.Decision.Action = position.ActionExit
		order, err := t.closeLive("trailing_stop", tick.Price)
		if err != nil {
			live.pendingExit = true
			t.refreshSnapshot()
			return res, err
		}
		res.Closed = true
		res.CloseOrder = order
		return res, nil
	}
	t.refreshSnapshot()
	return res, nil
}
