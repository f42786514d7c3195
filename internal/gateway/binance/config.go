package binance

import (
	"strings"
	"time"
)

const (
	mainnetBaseURL = "https://fapi.binance.com"
	testnetBaseURL = "https://testnet.binancefuture.com"
)

type Config struct {
	APIKey      string
	SecretKey   string
	Testnet     bool
	RESTBaseURL string
	HTTPTimeout time.Duration

	ProxyEnabled bool
	RESTProxyURL string
}

func (c *Config) withDefaults() Config {
	out := *c
	out.APIKey = strings.TrimSpace(out.APIKey)
	out.SecretKey = strings.TrimSpace(out.SecretKey)
	out.RESTBaseURL = strings.TrimSpace(out.RESTBaseURL)
	if out.RESTBaseURL == "" {
		out.RESTBaseURL = mainnetBaseURL
		if out.Testnet {
			out.RESTBaseURL = testnetBaseURL
		}
	}
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = 15 * time.Second
	}
	out.RESTProxyURL = strings.TrimSpace(out.RESTProxyURL)
	return out
}
