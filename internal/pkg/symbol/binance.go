package symbol

import "strings"

type BinanceConverter struct{}

// ToExchange turns any accepted spelling into the venue ticker, e.g. SOLUSDT.
func (BinanceConverter) ToExchange(internal string) string {
	if sym := Parse(internal).Binance(); sym != "" {
		return sym
	}
	s := strings.ToUpper(strings.TrimSpace(internal))
	return strings.ReplaceAll(s, "/", "")
}

func (BinanceConverter) FromExchange(raw string) string {
	return Parse(raw).Internal()
}

var Binance = BinanceConverter{}
