package app

import (
	"context"
	"fmt"

	"ladder/internal/config"
	"ladder/internal/gateway/exchange"
	"ladder/internal/gateway/notifier"
	"ladder/internal/logger"
	"ladder/internal/store"
	"ladder/internal/trader"
	livehttp "ladder/internal/transport/http/live"
)

// AppBuilder assembles the App. The *Fn hooks default to the real
// constructors and can be swapped in tests.
type AppBuilder struct {
	cfg *config.Config

	executorFn func(config.Config) (exchange.Executor, error)
	journalFn  func(config.JournalConfig) (store.EventStore, error)
	notifierFn func(config.NotifyConfig) notifier.TextNotifier
	liveHTTPFn func(config.AppConfig, livehttp.Desk) (*livehttp.Server, error)
}

type AppBuilderOption func(*AppBuilder)

// WithExecutor replaces the configured venue.
func WithExecutor(exec exchange.Executor) AppBuilderOption {
	return func(b *AppBuilder) {
		b.executorFn = func(config.Config) (exchange.Executor, error) { return exec, nil }
	}
}

func WithJournal(st store.EventStore) AppBuilderOption {
	return func(b *AppBuilder) {
		b.journalFn = func(config.JournalConfig) (store.EventStore, error) { return st, nil }
	}
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:        cfg,
		executorFn: buildExecutor,
		journalFn:  buildJournal,
		notifierFn: buildNotifier,
		liveHTTPFn: buildLiveHTTPServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	logger.SetLevel(cfg.App.LogLevel)

	exec, err := b.executorFn(*cfg)
	if err != nil {
		return nil, err
	}
	logger.Infof("✓ Executor: %s", exec.Name())

	journal, err := b.journalFn(cfg.Journal)
	if err != nil {
		return nil, err
	}

	queue := notifier.NewQueue(b.notifierFn(cfg.Notify), 64)

	tr := trader.NewTrader(exec, journal, queue, trader.OptionsFromConfig(cfg.Trading))

	server, err := b.liveHTTPFn(cfg.App, tr)
	if err != nil {
		queue.Close()
		_ = journal.Close()
		return nil, err
	}

	return &App{
		cfg:      cfg,
		trader:   tr,
		liveHTTP: server,
		notify:   queue,
		Summary:  newStartupSummary(cfg, exec.Name()),
	}, nil
}
