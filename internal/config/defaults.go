package config

import (
	"strings"
)

const (
	defaultAppEnv          = "dev"
	defaultAppLogLevel     = "info"
	defaultAppLogFormat    = "text"
	defaultAppHTTPAddr     = ":5000"
	defaultTradingExecutor = ExecutorPaper
	defaultPositionSize    = 100
	defaultReplacePolicy   = ReplaceReject
	defaultOrderTimeout    = 10
	defaultBinanceTestnet  = true
	defaultBinanceTimeout  = 15
	defaultJournalEnabled  = true
	defaultJournalDriver   = JournalSQLite
	defaultJournalSQLite   = "data/ladder.db"
	defaultJournalFile     = "data/ladder-events.jsonl"
)

func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Trading.applyDefaults(keys)
	c.Binance.applyDefaults(keys)
	c.Journal.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.log_format", &a.LogFormat, defaultAppLogFormat),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
	)
}

func (t *TradingConfig) applyDefaults(keys keySet) {
	if t == nil {
		return
	}
	t.Executor = strings.ToLower(strings.TrimSpace(t.Executor))
	t.ReplacePolicy = strings.ToLower(strings.TrimSpace(t.ReplacePolicy))
	applyFieldDefaults(keys,
		stringFieldDefault("trading.executor", &t.Executor, defaultTradingExecutor),
		stringFieldDefault("trading.replace_policy", &t.ReplacePolicy, defaultReplacePolicy),
		floatFieldDefault("trading.default_position_size", &t.DefaultPositionSize, defaultPositionSize),
		intFieldDefault("trading.order_timeout_seconds", &t.OrderTimeoutSeconds, defaultOrderTimeout),
	)
}

func (b *BinanceConfig) applyDefaults(keys keySet) {
	if b == nil {
		return
	}
	applyFieldDefaults(keys,
		boolFieldDefault("binance.testnet", &b.Testnet, defaultBinanceTestnet),
		intFieldDefault("binance.timeout_seconds", &b.TimeoutSeconds, defaultBinanceTimeout),
	)
}

func (j *JournalConfig) applyDefaults(keys keySet) {
	if j == nil {
		return
	}
	j.Driver = strings.ToLower(strings.TrimSpace(j.Driver))
	applyFieldDefaults(keys,
		boolFieldDefault("journal.enabled", &j.Enabled, defaultJournalEnabled),
		stringFieldDefault("journal.driver", &j.Driver, defaultJournalDriver),
	)
	if strings.TrimSpace(j.Path) == "" {
		j.Path = defaultJournalSQLite
		if j.Driver == JournalFile {
			j.Path = defaultJournalFile
		}
	}
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func floatFieldDefault(key string, target *float64, def float64) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target <= 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target <= 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
