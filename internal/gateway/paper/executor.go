// Package paper fills every order immediately at the caller's reference price.
package paper

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"ladder/internal/gateway/exchange"
	"ladder/internal/logger"
	symbolpkg "ladder/internal/pkg/symbol"

	"github.com/google/uuid"
)

type Executor struct {
	seq atomic.Int64

	mu     sync.Mutex
	orders []exchange.OrderResult
}

var _ exchange.Executor = (*Executor)(nil)

func New() *Executor { return &Executor{} }

func (e *Executor) Name() string { return "paper" }

func (e *Executor) OpenPosition(ctx context.Context, req exchange.OrderRequest) (*exchange.OrderResult, error) {
	return e.fill(ctx, req, req.Side)
}

func (e *Executor) ClosePosition(ctx context.Context, req exchange.OrderRequest) (*exchange.OrderResult, error) {
	return e.fill(ctx, req, exchange.OppositeSide(req.Side))
}

func (e *Executor) fill(ctx context.Context, req exchange.OrderRequest, side string) (*exchange.OrderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	res := exchange.OrderResult{
		OrderID:       fmt.Sprintf("paper-%d", e.seq.Add(1)),
		ClientOrderID: uuid.NewString(),
		Symbol:        symbolpkg.Binance.ToExchange(req.Symbol),
		Side:          side,
		Status:        "FILLED",
		AvgPrice:      req.RefPrice,
		FilledQty:     req.Quantity,
		Venue:         e.Name(),
		SubmittedAt:   time.Now(),
	}
	e.mu.Lock()
	e.orders = append(e.orders, res)
	e.mu.Unlock()
	logger.Infof("paper fill %s %s qty=%g price=%g reason=%s", res.Symbol, side, req.Quantity, req.RefPrice, req.Reason)
	return &res, nil
}

// Orders returns every fill so far, oldest first.
func (e *Executor) Orders() []exchange.OrderResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]exchange.OrderResult(nil), e.orders...)
}
