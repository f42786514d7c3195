// Package exchange defines the venue abstraction the trader places orders through.
// Implementations live in sibling packages (binance, paper).
package exchange

import "context"

type Executor interface {
	Name() string

	// OpenPosition submits the entry market order.
	OpenPosition(ctx context.Context, req OrderRequest) (*OrderResult, error)

	// ClosePosition submits a reduce-only market order on the opposite side.
	ClosePosition(ctx context.Context, req OrderRequest) (*OrderResult, error)
}
