package livehttp

import (
	"context"

	"ladder/internal/signal"
	"ladder/internal/store"
	"ladder/internal/trader"
)

// Desk is the trading surface the HTTP layer drives; *trader.Trader implements it.
type Desk interface {
	OpenPosition(ctx context.Context, sig signal.OpenSignal) (trader.OpenResult, error)
	UpdatePrice(ctx context.Context, tick signal.PriceTick) (trader.PriceResult, error)
	ClosePosition(ctx context.Context, reason string) (trader.CloseResult, error)
	CurrentPosition() (trader.PositionView, bool)
	PositionEvents(ctx context.Context, positionID string, limit int) ([]store.EventRecord, error)
}

var _ Desk = (*trader.Trader)(nil)

type closeRequest struct {
	Reason string `json:"reason"`
}
