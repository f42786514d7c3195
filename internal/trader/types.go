package trader

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ladder/internal/gateway/exchange"
	"ladder/internal/position"
	"ladder/internal/signal"
)

// EventType names both the commands the actor accepts and the facts it journals.
type EventType string

const (
	// Commands
	EvtSignalEntry EventType = "SIGNAL_ENTRY"
	EvtPriceUpdate EventType = "PRICE_UPDATE"
	EvtManualClose EventType = "MANUAL_CLOSE"

	// Facts, journaled only
	EvtPositionOpened    EventType = "POSITION_OPENED"
	EvtPositionClosed    EventType = "POSITION_CLOSED"
	EvtSignalRejected    EventType = "SIGNAL_REJECTED"
	EvtTargetHit         EventType = "TARGET_HIT"
	EvtTrailingActivated EventType = "TRAILING_ACTIVATED"
	EvtStopMoved         EventType = "STOP_MOVED"
	EvtExitTriggered     EventType = "EXIT_TRIGGERED"
	EvtCloseFailed       EventType = "CLOSE_FAILED"
)

var factTypes = map[position.EventKind]EventType{
	position.EventTargetHit:         EvtTargetHit,
	position.EventTrailingActivated: EvtTrailingActivated,
	position.EventStopMoved:         EvtStopMoved,
	position.EventExitTriggered:     EvtExitTriggered,
}

// EventEnvelope is the message the actor loop receives.
type EventEnvelope struct {
	ID        string
	Type      EventType
	Payload   json.RawMessage
	CreatedAt time.Time
	Symbol    string

	// ReplyCh receives exactly one Reply when set (see SendSync).
	ReplyCh chan Reply `json:"-"`
}

type Reply struct {
	Result any
	Err    error
}

type SignalEntryPayload struct {
	Signal signal.OpenSignal `json:"signal"`
}

type PriceUpdatePayload struct {
	Tick signal.PriceTick `json:"tick"`
}

type ManualClosePayload struct {
	Reason string  `json:"reason"`
	Price  float64 `json:"price,omitempty"`
}

// PositionView is the read model of the live position.
type PositionView struct {
	ID          string                `json:"id"`
	Symbol      string                `json:"symbol"`
	Side        string                `json:"side"`
	Size        float64               `json:"size"`
	OpenedAt    time.Time             `json:"opened_at"`
	EntryOrder  *exchange.OrderResult `json:"entry_order,omitempty"`
	LastPrice   float64               `json:"last_price,omitempty"`
	LastPriceAt time.Time             `json:"last_price_at,omitempty"`
	PendingExit bool                  `json:"pending_exit"`
	Tracker     position.Snapshot     `json:"tracker"`
}

type OpenResult struct {
	Position PositionView  `json:"position"`
	Replaced *PositionView `json:"replaced,omitempty"`
}

type PriceResult struct {
	PositionID string                `json:"position_id"`
	Symbol     string                `json:"symbol"`
	Decision   position.Decision     `json:"decision"`
	Closed     bool                  `json:"closed"`
	CloseOrder *exchange.OrderResult `json:"close_order,omitempty"`
}

type CloseResult struct {
	Position PositionView          `json:"position"`
	Order    *exchange.OrderResult `json:"order"`
	Reason   string                `json:"reason"`
}

var (
	ErrNoActivePosition = errors.New("no trade active")
	ErrPositionOpen     = errors.New("a position is already open")
	ErrSymbolMismatch   = errors.New("price symbol does not match the open position")
	ErrSymbolNotAllowed = errors.New("symbol is not in trading.symbols")
	ErrTraderStopped    = errors.New("trader is stopped")
)

// OrderError wraps a venue failure; state is left as it was before the order.
type OrderError struct {
	Action string
	Err    error
}

func (e *OrderError) Error() string { return fmt.Sprintf("%s order failed: %v", e.Action, e.Err) }

func (e *OrderError) Unwrap() error { return e.Err }

// livePosition is owned by the actor goroutine; never shared.
type livePosition struct {
	id          string
	symbol      string
	size        float64
	openedAt    time.Time
	entryOrder  *exchange.OrderResult
	tracker     *position.Tracker
	lastPrice   float64
	lastPriceAt time.Time
	// pendingExit is set when an exit was decided but the close order failed.
	pendingExit bool
}

func (p *livePosition) side() string {
	if p.tracker.Direction() == position.Short {
		return exchange.SideShort
	}
	return exchange.SideLong
}

func (p *livePosition) view() PositionView {
	return PositionView{
		ID:          p.id,
		Symbol:      p.symbol,
		Side:        p.side(),
		Size:        p.size,
		OpenedAt:    p.openedAt,
		EntryOrder:  p.entryOrder,
		LastPrice:   p.lastPrice,
		LastPriceAt: p.lastPriceAt,
		PendingExit: p.pendingExit,
		Tracker:     p.tracker.Snapshot(),
	}
}

// State is the actor's in-memory state (single goroutine, no locks).
type State struct {
	Live *livePosition
}

func NewState() *State { return &State{} }
