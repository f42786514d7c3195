package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "app:\n  env: test\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":5000", cfg.App.HTTPAddr)
	assert.Equal(t, ExecutorPaper, cfg.Trading.Executor)
	assert.Equal(t, ReplaceReject, cfg.Trading.ReplacePolicy)
	assert.Equal(t, 100.0, cfg.Trading.DefaultPositionSize)
	assert.Equal(t, 10*time.Second, cfg.Trading.OrderTimeout())
	assert.True(t, cfg.Binance.Testnet)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, JournalSQLite, cfg.Journal.Driver)
	assert.Equal(t, "data/ladder.db", cfg.Journal.Path)
}

func TestLoadKeepsExplicitFalse(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
binance:
  testnet: false
journal:
  enabled: false
trading:
  default_position_size: "2.5"
  replace_policy: REPLACE
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Binance.Testnet)
	assert.False(t, cfg.Journal.Enabled)
	assert.Equal(t, 2.5, cfg.Trading.DefaultPositionSize)
	assert.Equal(t, ReplaceReplace, cfg.Trading.ReplacePolicy)
}

func TestLoadIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "app:\n  log_level: debug\n  http_addr: \":7000\"\n")
	path := writeFile(t, dir, "config.yaml", "include:\n  - base.yaml\napp:\n  http_addr: \":8000\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, ":8000", cfg.App.HTTPAddr)
}

func TestLoadIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "include:\n  - b.yaml\n")
	path := writeFile(t, dir, "b.yaml", "include:\n  - a.yaml\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "cycle")
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "trading:\n  executor: binance\n")
	t.Setenv("LADDER_BINANCE_API_KEY", "k")
	t.Setenv("LADDER_BINANCE_SECRET_KEY", "s")
	t.Setenv("LADDER_APP_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "k", cfg.Binance.APIKey)
	assert.Equal(t, "s", cfg.Binance.SecretKey)
	assert.Equal(t, "warn", cfg.App.LogLevel)
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"executor":      "trading:\n  executor: ftx\n",
		"policy":        "trading:\n  replace_policy: merge\n",
		"binance keys":  "trading:\n  executor: binance\n",
		"symbols":       "trading:\n  symbols: [\"???\"]\n",
		"journal":       "journal:\n  driver: postgres\n",
		"telegram":      "notify:\n  telegram:\n    enabled: true\n",
		"negative size": "trading:\n  default_position_size: -1\n  order_timeout_seconds: -3\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", body)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
	_, err = Load("")
	assert.Error(t, err)
}

func TestWatcherReloads(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "app:\n  log_level: info\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	w, err := Watch(path, cfg)
	require.NoError(t, err)
	got := make(chan string, 4)
	w.OnChange(func(c *Config) { got <- c.App.LogLevel })

	require.NoError(t, os.WriteFile(path, []byte("app:\n  log_level: debug\n"), 0o644))
	select {
	case level := <-got:
		assert.Equal(t, "debug", level)
		assert.Equal(t, "debug", w.Current().App.LogLevel)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}
}
