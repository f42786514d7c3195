package app

import (
	"context"
	"fmt"

	"ladder/internal/config"
	"ladder/internal/gateway/notifier"
	"ladder/internal/logger"
	"ladder/internal/trader"
	livehttp "ladder/internal/transport/http/live"

	"golang.org/x/sync/errgroup"
)

// App runs the trader actor and the webhook server side by side.
type App struct {
	cfg      *config.Config
	trader   *trader.Trader
	liveHTTP *livehttp.Server
	notify   *notifier.Queue
	Summary  *StartupSummary
}

// NewApp builds the application without starting it.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run blocks until ctx is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.trader == nil {
		return fmt.Errorf("trader not initialized")
	}

	if a.Summary != nil {
		a.Summary.Print()
	}

	group, ctx := errgroup.WithContext(ctx)

	if a.liveHTTP != nil {
		group.Go(func() error {
			if err := a.liveHTTP.Start(ctx); err != nil {
				return fmt.Errorf("live http server error: %w", err)
			}
			return nil
		})
	}

	group.Go(func() error {
		return a.trader.Run(ctx)
	})

	err := group.Wait()
	if a.notify != nil {
		a.notify.Close()
	}
	return err
}

// Trader exposes the actor, for tests and replay harnesses.
func (a *App) Trader() *trader.Trader {
	if a == nil {
		return nil
	}
	return a.trader
}

func (a *App) HTTPServer() *livehttp.Server {
	if a == nil {
		return nil
	}
	return a.liveHTTP
}
