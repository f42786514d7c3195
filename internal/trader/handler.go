package trader

// EventHandler handles one command type inside the actor loop.
type EventHandler interface {
	Type() EventType

	// Handle processes the payload. The result is delivered to SendSync callers.
	Handle(ctx *HandlerContext, payload []byte, traceID string) (any, error)
}

// HandlerContext gives handlers access to the Trader without exporting its internals.
type HandlerContext struct {
	trader *Trader
}

func NewHandlerContext(t *Trader) *HandlerContext {
	return &HandlerContext{trader: t}
}

func (c *HandlerContext) Trader() *Trader {
	return c.trader
}
