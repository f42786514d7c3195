package config

import (
	"fmt"
	"net/url"
	"strings"

	symbolpkg "ladder/internal/pkg/symbol"
)

// validate runs after defaults; every error names the offending key.
func validate(c *Config) error {
	if err := c.Trading.validate(); err != nil {
		return err
	}
	if err := c.Binance.validate(c.Trading.Executor == ExecutorBinance); err != nil {
		return err
	}
	if err := c.Journal.validate(); err != nil {
		return err
	}
	if err := c.Notify.validate(); err != nil {
		return err
	}
	return nil
}

func (t *TradingConfig) validate() error {
	switch t.Executor {
	case ExecutorPaper, ExecutorBinance:
	default:
		return fmt.Errorf("trading.executor must be paper or binance, got %q", t.Executor)
	}
	switch t.ReplacePolicy {
	case ReplaceReject, ReplaceReplace:
	default:
		return fmt.Errorf("trading.replace_policy must be reject or replace, got %q", t.ReplacePolicy)
	}
	if t.DefaultPositionSize <= 0 {
		return fmt.Errorf("trading.default_position_size must be > 0")
	}
	if t.OrderTimeoutSeconds <= 0 {
		return fmt.Errorf("trading.order_timeout_seconds must be > 0")
	}
	for _, sym := range t.Symbols {
		if !symbolpkg.IsValid(sym) {
			return fmt.Errorf("trading.symbols contains unrecognised pair %q", sym)
		}
	}
	return nil
}

func (b *BinanceConfig) validate(required bool) error {
	if !required {
		return nil
	}
	if strings.TrimSpace(b.APIKey) == "" || strings.TrimSpace(b.SecretKey) == "" {
		return fmt.Errorf("binance.api_key and binance.secret_key are required when trading.executor=binance")
	}
	if b.RESTBaseURL != "" {
		if _, err := url.ParseRequestURI(b.RESTBaseURL); err != nil {
			return fmt.Errorf("binance.rest_base_url invalid: %w", err)
		}
	}
	if b.ProxyURL != "" {
		if _, err := url.ParseRequestURI(b.ProxyURL); err != nil {
			return fmt.Errorf("binance.proxy_url invalid: %w", err)
		}
	}
	return nil
}

func (j *JournalConfig) validate() error {
	if !j.Enabled {
		return nil
	}
	switch j.Driver {
	case JournalSQLite, JournalFile:
	default:
		return fmt.Errorf("journal.driver must be sqlite or file, got %q", j.Driver)
	}
	return nil
}

func (n *NotifyConfig) validate() error {
	tg := n.Telegram
	if tg.Enabled && (strings.TrimSpace(tg.BotToken) == "" || strings.TrimSpace(tg.ChatID) == "") {
		return fmt.Errorf("notify.telegram requires bot_token and chat_id when enabled")
	}
	return nil
}
