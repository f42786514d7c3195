package trader

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ladder/internal/config"
	"ladder/internal/gateway/exchange"
	"ladder/internal/logger"
	"ladder/internal/pkg/symbol"
	"ladder/internal/position"
	"ladder/internal/signal"

	"github.com/google/uuid"
)

type openedFact struct {
	Signal  signal.OpenSignal     `json:"signal"`
	Order   *exchange.OrderResult `json:"order"`
	Tracker position.Snapshot     `json:"tracker"`
}

type rejectedFact struct {
	Reason string            `json:"reason"`
	Signal signal.OpenSignal `json:"signal"`
}

func (t *Trader) handleSignalEntry(payload []byte, traceID string) (any, error) {
	var p SignalEntryPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode signal entry: %w", err)
	}
	sig := p.Signal
	sym := symbol.Normalize(sig.Symbol)
	if sym == "" {
		sym = strings.ToUpper(strings.TrimSpace(sig.Symbol))
	}

	if !t.symbolAllowed(sym) {
		t.record(EvtSignalRejected, "", sym, rejectedFact{Reason: "symbol not allowed", Signal: sig})
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotAllowed, sig.Symbol)
	}

	size := t.opts.DefaultSize
	if t.opts.AllowSizeFromPayload && sig.Size > 0 {
		size = sig.Size
	}

	var replaced *PositionView
	if live := t.state.Live; live != nil {
		if t.opts.ReplacePolicy != config.ReplaceReplace {
			t.record(EvtSignalRejected, live.id, sym, rejectedFact{Reason: "position already open", Signal: sig})
			return nil, fmt.Errorf("%w: %s %s", ErrPositionOpen, live.id, live.symbol)
		}
		prev := live.view()
		if _, err := t.closeLive("replaced", t.closeRefPrice(live)); err != nil {
			return nil, err
		}
		replaced = &prev
	}

	id := uuid.NewString()
	side := exchange.SideLong
	if sig.Direction == position.Short {
		side = exchange.SideShort
	}

	ctx, cancel := t.orderContext()
	defer cancel()
	order, err := t.executor.OpenPosition(ctx, exchange.OrderRequest{
		PositionID: id,
		Symbol:     sym,
		Side:       side,
		Quantity:   size,
		RefPrice:   sig.Entry,
		Reason:     "signal",
	})
	if err != nil {
		t.record(EvtSignalRejected, id, sym, rejectedFact{Reason: err.Error(), Signal: sig})
		logger.Errorf("Trader: entry order for %s failed (trace=%s): %v", sym, traceID, err)
		return nil, &OrderError{Action: "entry", Err: err}
	}

	live := &livePosition{
		id:         id,
		symbol:     sym,
		size:       size,
		openedAt:   time.Now(),
		entryOrder: order,
		tracker:    position.New(sig.Entry, sig.StopLoss, size, sig.Direction, sig.ATR),
	}
	t.state.Live = live
	t.refreshSnapshot()

	view := live.view()
	t.record(EvtPositionOpened, id, sym, openedFact{Signal: sig, Order: order, Tracker: view.Tracker})
	logger.With("position_id", id, "symbol", sym).Info("position opened",
		"direction", sig.Direction.String(),
		"entry", sig.Entry,
		"stop_loss", sig.StopLoss,
		"size", size,
		"targets", view.Tracker.Targets,
		"order_id", order.OrderID,
	)
	t.notifyOpened(view)

	return OpenResult{Position: view, Replaced: replaced}, nil
}
