package app

import (
	"fmt"
	"strings"
	"time"

	"ladder/internal/config"
	"ladder/internal/gateway/binance"
	"ladder/internal/gateway/exchange"
	"ladder/internal/gateway/notifier"
	"ladder/internal/gateway/paper"
	"ladder/internal/logger"
	"ladder/internal/store"
	"ladder/internal/store/filestore"
	"ladder/internal/store/gormstore"
	livehttp "ladder/internal/transport/http/live"
)

func buildExecutor(cfg config.Config) (exchange.Executor, error) {
	switch cfg.Trading.Executor {
	case config.ExecutorBinance:
		bc := cfg.Binance
		exec, err := binance.New(binance.Config{
			APIKey:       bc.APIKey,
			SecretKey:    bc.SecretKey,
			Testnet:      bc.Testnet,
			RESTBaseURL:  bc.RESTBaseURL,
			HTTPTimeout:  time.Duration(bc.TimeoutSeconds) * time.Second,
			ProxyEnabled: strings.TrimSpace(bc.ProxyURL) != "",
			RESTProxyURL: bc.ProxyURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to init binance executor: %w", err)
		}
		if !bc.Testnet {
			logger.Warnf("Binance executor is pointed at MAINNET")
		}
		return exec, nil
	case config.ExecutorPaper, "":
		return paper.New(), nil
	default:
		return nil, fmt.Errorf("unknown executor %q", cfg.Trading.Executor)
	}
}

func buildJournal(cfg config.JournalConfig) (store.EventStore, error) {
	if !cfg.Enabled {
		logger.Infof("Journal disabled")
		return store.Nop{}, nil
	}
	switch cfg.Driver {
	case config.JournalFile:
		st, err := filestore.New(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file journal: %w", err)
		}
		logger.Infof("✓ Journal: %s (jsonl)", cfg.Path)
		return st, nil
	case config.JournalSQLite, "":
		st, err := gormstore.NewGormStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite journal: %w", err)
		}
		logger.Infof("✓ Journal: %s (sqlite)", cfg.Path)
		return st, nil
	default:
		return nil, fmt.Errorf("unknown journal driver %q", cfg.Driver)
	}
}

func buildNotifier(cfg config.NotifyConfig) notifier.TextNotifier {
	if !cfg.Telegram.Enabled {
		return notifier.Nop{}
	}
	logger.Infof("✓ Telegram notifications enabled")
	return notifier.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
}

func buildLiveHTTPServer(cfg config.AppConfig, desk livehttp.Desk) (*livehttp.Server, error) {
	server, err := livehttp.NewServer(livehttp.ServerConfig{
		Addr: cfg.HTTPAddr,
		Desk: desk,
	})
	if err != nil {
		return nil, fmt.Errorf("init live http: %w", err)
	}
	logger.Infof("✓ Live HTTP listening on %s", server.Addr())
	return server, nil
}
