package trader

type SignalEntryHandler struct{}

func (h *SignalEntryHandler) Type() EventType { return EvtSignalEntry }

func (h *SignalEntryHandler) Handle(ctx *HandlerContext, payload []byte, traceID string) (any, error) {
	return ctx.Trader().handleSignalEntry(payload, traceID)
}

type PriceUpdateHandler struct{}

func (h *PriceUpdateHandler) Type() EventType { return EvtPriceUpdate }

func (h *PriceUpdateHandler) Handle(ctx *HandlerContext, payload []byte, traceID string) (any, error) {
	return ctx.Trader().handlePriceUpdate(payload, traceID)
}

type ManualCloseHandler struct{}

func (h *ManualCloseHandler) Type() EventType { return EvtManualClose }

func (h *ManualCloseHandler) Handle(ctx *HandlerContext, payload []byte, traceID string) (any, error) {
	return ctx.Trader().handleManualClose(payload, traceID)
}
