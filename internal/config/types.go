package config

import (
	"strings"
	"time"
)

// Config is the root of configs/config.yaml.
type Config struct {
	App     AppConfig     `toml:"app"`
	Trading TradingConfig `toml:"trading"`
	Binance BinanceConfig `toml:"binance"`
	Journal JournalConfig `toml:"journal"`
	Notify  NotifyConfig  `toml:"notify"`
}

type AppConfig struct {
	Env       string `toml:"env"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"` // "text" | "json"
	HTTPAddr  string `toml:"http_addr"`
	LogPath   string `toml:"log_path"`
}

const (
	ExecutorPaper   = "paper"
	ExecutorBinance = "binance"

	// ReplaceReject refuses a new signal while a position is open.
	ReplaceReject = "reject"
	// ReplaceReplace closes the open position on the venue, then opens the new one.
	ReplaceReplace = "replace"
)

// TradingConfig controls how signals become positions.
type TradingConfig struct {
	Executor             string   `toml:"executor"`
	DefaultPositionSize  float64  `toml:"default_position_size"`
	ReplacePolicy        string   `toml:"replace_policy"`
	Symbols              []string `toml:"symbols"` // empty = any symbol
	OrderTimeoutSeconds  int      `toml:"order_timeout_seconds"`
	AllowSizeFromPayload bool     `toml:"allow_size_from_payload"`
}

func (t TradingConfig) OrderTimeout() time.Duration {
	return time.Duration(t.OrderTimeoutSeconds) * time.Second
}

type BinanceConfig struct {
	APIKey         string `toml:"api_key"`
	SecretKey      string `toml:"secret_key"`
	Testnet        bool   `toml:"testnet"`
	RESTBaseURL    string `toml:"rest_base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	ProxyURL       string `toml:"proxy_url"`
}

const (
	JournalSQLite = "sqlite"
	JournalFile   = "file"
)

// JournalConfig describes the append-only audit trail of position events.
type JournalConfig struct {
	Enabled bool   `toml:"enabled"`
	Driver  string `toml:"driver"`
	Path    string `toml:"path"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
}

type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
