package trader

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"ladder/internal/config"
	"ladder/internal/gateway/exchange"
	"ladder/internal/gateway/notifier"
	"ladder/internal/logger"
	"ladder/internal/pkg/symbol"
	"ladder/internal/signal"
	"ladder/internal/store"

	"github.com/google/uuid"
)

// Options are the trading knobs the actor reads on every command.
type Options struct {
	DefaultSize          float64
	ReplacePolicy        string
	Symbols              []string
	AllowSizeFromPayload bool
	OrderTimeout         time.Duration
}

// OptionsFromConfig maps the trading section onto Options.
func OptionsFromConfig(cfg config.TradingConfig) Options {
	return Options{
		DefaultSize:          cfg.DefaultPositionSize,
		ReplacePolicy:        cfg.ReplacePolicy,
		Symbols:              cfg.Symbols,
		AllowSizeFromPayload: cfg.AllowSizeFromPayload,
		OrderTimeout:         cfg.OrderTimeout(),
	}
}

func (o Options) withDefaults() Options {
	if o.DefaultSize <= 0 {
		o.DefaultSize = 100
	}
	if o.ReplacePolicy == "" {
		o.ReplacePolicy = config.ReplaceReject
	}
	if o.OrderTimeout <= 0 {
		o.OrderTimeout = 10 * time.Second
	}
	return o
}

// Trader owns the single live position. Every command runs on one goroutine
// (runLoop), so the tracker is never touched concurrently; readers use the
// published snapshot instead.
type Trader struct {
	executor      exchange.Executor
	store         store.EventStore
	notifier      notifier.TextNotifier
	opts          Options
	eventRegistry *HandlerRegistry

	msgCh    chan EventEnvelope
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	state *State

	stateSnapshot atomic.Value
}

type snapshotBox struct {
	view *PositionView
}

func NewTrader(exec exchange.Executor, st store.EventStore, notify notifier.TextNotifier, opts Options) *Trader {
	if st == nil {
		st = store.Nop{}
	}
	if notify == nil {
		notify = notifier.Nop{}
	}
	eventReg := NewHandlerRegistry()
	eventReg.RegisterDefaultHandlers()

	tr := &Trader{
		executor:      exec,
		store:         st,
		notifier:      notify,
		opts:          opts.withDefaults(),
		eventRegistry: eventReg,
		msgCh:         make(chan EventEnvelope, 100),
		stopCh:        make(chan struct{}),
		state:         NewState(),
	}
	tr.refreshSnapshot()
	return tr
}

func (t *Trader) Start() {
	t.wg.Add(1)
	go t.runLoop()
}

// Stop ends the loop and closes the journal. Safe to call more than once.
func (t *Trader) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopCh)
		t.wg.Wait()
		if err := t.store.Close(); err != nil {
			logger.Warnf("Trader: event store close failed: %v", err)
		}
	})
}

// Run starts the loop and blocks until ctx is done.
func (t *Trader) Run(ctx context.Context) error {
	t.Start()
	<-ctx.Done()
	t.Stop()
	return nil
}

func (t *Trader) Send(evt EventEnvelope) error {
	select {
	case <-t.stopCh:
		return ErrTraderStopped
	default:
	}
	select {
	case t.msgCh <- evt:
		return nil
	case <-t.stopCh:
		return ErrTraderStopped
	}
}

// SendSync enqueues evt and waits for its handler result.
func (t *Trader) SendSync(ctx context.Context, evt EventEnvelope) (any, error) {
	if evt.ReplyCh == nil {
		evt.ReplyCh = make(chan Reply, 1)
	}

	if err := t.Send(evt); err != nil {
		return nil, err
	}

	select {
	case reply := <-evt.ReplyCh:
		return reply.Result, reply.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.stopCh:
		return nil, ErrTraderStopped
	}
}

func (t *Trader) request(ctx context.Context, typ EventType, sym string, payload any) (any, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return t.SendSync(ctx, EventEnvelope{
		ID:        uuid.NewString(),
		Type:      typ,
		Payload:   raw,
		CreatedAt: time.Now(),
		Symbol:    sym,
	})
}

// OpenPosition places the entry order for sig and starts tracking it.
func (t *Trader) OpenPosition(ctx context.Context, sig signal.OpenSignal) (OpenResult, error) {
	res, err := t.request(ctx, EvtSignalEntry, sig.Symbol, SignalEntryPayload{Signal: sig})
	if err != nil {
		return OpenResult{}, err
	}
	out, _ := res.(OpenResult)
	return out, nil
}

// UpdatePrice feeds one tick to the live tracker. When the tracker asks to
// exit and the closing order fails, the returned result still carries the
// decision alongside an *OrderError.
func (t *Trader) UpdatePrice(ctx context.Context, tick signal.PriceTick) (PriceResult, error) {
	res, err := t.request(ctx, EvtPriceUpdate, tick.Symbol, PriceUpdatePayload{Tick: tick})
	out, _ := res.(PriceResult)
	return out, err
}

// ClosePosition closes the live position on the venue and stops tracking it.
func (t *Trader) ClosePosition(ctx context.Context, reason string) (CloseResult, error) {
	if strings.TrimSpace(reason) == "" {
		reason = "manual"
	}
	res, err := t.request(ctx, EvtManualClose, "", ManualClosePayload{Reason: reason})
	if err != nil {
		return CloseResult{}, err
	}
	out, _ := res.(CloseResult)
	return out, nil
}

// CurrentPosition returns the last published view of the live position.
func (t *Trader) CurrentPosition() (PositionView, bool) {
	val, _ := t.stateSnapshot.Load().(snapshotBox)
	if val.view == nil {
		return PositionView{}, false
	}
	return *val.view, true
}

// PositionEvents lists journaled facts for one position, oldest first.
func (t *Trader) PositionEvents(ctx context.Context, positionID string, limit int) ([]store.EventRecord, error) {
	return t.store.List(ctx, positionID, store.ClampLimit(limit))
}

func (t *Trader) ExecutorName() string {
	if t.executor == nil {
		return ""
	}
	return t.executor.Name()
}

func (t *Trader) refreshSnapshot() {
	if t.state.Live == nil {
		t.stateSnapshot.Store(snapshotBox{})
		return
	}
	view := t.state.Live.view()
	t.stateSnapshot.Store(snapshotBox{view: &view})
}

func (t *Trader) symbolAllowed(sym string) bool {
	if len(t.opts.Symbols) == 0 {
		return true
	}
	for _, allowed := range t.opts.Symbols {
		if symbol.Same(allowed, sym) {
			return true
		}
	}
	return false
}

func (t *Trader) orderContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), t.opts.OrderTimeout)
}

func (t *Trader) runLoop() {
	defer t.wg.Done()
	logger.Infof("Trader Actor started (executor=%s policy=%s)", t.ExecutorName(), t.opts.ReplacePolicy)

	for {
		select {
		case evt := <-t.msgCh:
			t.handleEvent(evt)
		case <-t.stopCh:
			logger.Infof("Trader Actor stopping")
			return
		}
	}
}

// handleEvent runs one command. A panicking handler is reported to the caller
// as an error and the loop keeps running.
func (t *Trader) handleEvent(evt EventEnvelope) {
	var (
		result any
		err    error
	)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Trader panic handling event %s: %v\n%s", evt.Type, r, debug.Stack())
			err = fmt.Errorf("panic: %v", r)
		}

		if evt.ReplyCh != nil {
			evt.ReplyCh <- Reply{Result: result, Err: err}
			close(evt.ReplyCh)
		}

		if dur := time.Since(start); dur > 100*time.Millisecond {
			logger.Warnf("Slow event %s took %v", evt.Type, dur)
		}
	}()

	handler, ok := t.eventRegistry.Get(evt.Type)
	if !ok {
		err = fmt.Errorf("no handler registered for event type %s", evt.Type)
		logger.Warnf("Trader: %v", err)
		return
	}

	result, err = handler.Handle(NewHandlerContext(t), evt.Payload, evt.ID)
	if err != nil {
		logger.Debugf("Trader: %s %s: %v", evt.Type, evt.ID, err)
	}
}
