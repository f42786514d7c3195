package trader

import "ladder/internal/logger"

// HandlerRegistry maps command types to their handlers.
type HandlerRegistry struct {
	handlers map[EventType]EventHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[EventType]EventHandler),
	}
}

// Register adds h, replacing any handler already registered for its type.
func (r *HandlerRegistry) Register(h EventHandler) {
	if h == nil {
		return
	}
	r.handlers[h.Type()] = h
}

func (r *HandlerRegistry) Get(t EventType) (EventHandler, bool) {
	h, ok := r.handlers[t]
	return h, ok
}

func (r *HandlerRegistry) RegisterDefaultHandlers() {
	r.Register(&SignalEntryHandler{})
	r.Register(&PriceUpdateHandler{})
	r.Register(&ManualCloseHandler{})
	logger.Debugf("Trader: Registered %d event handlers", len(r.handlers))
}
