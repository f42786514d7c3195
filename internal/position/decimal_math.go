package position

import (
	"math"

	"github.com/shopspring/decimal"
)

var (
	decOne      = decimal.NewFromInt(1)
	decMinusOne = decimal.NewFromInt(-1)
	decHalf     = decimal.NewFromFloat(0.5)
	decimalZero = decimal.Zero
)

func decFromFloat(val float64) decimal.Decimal {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return decimalZero
	}
	return decimal.NewFromFloat(val)
}

func decToFloat(val decimal.Decimal) float64 {
	f, _ := val.Float64()
	return f
}

// reached reports whether price is at or beyond level in the profit direction.
func reached(dir Direction, price, level decimal.Decimal) bool {
	if dir == Short {
		return price.LessThanOrEqual(level)
	}
	return price.GreaterThanOrEqual(level)
}

// breached reports whether price is at or beyond stop in the loss direction.
func breached(dir Direction, price, stop decimal.Decimal) bool {
	if dir == Short {
		return price.GreaterThanOrEqual(stop)
	}
	return price.LessThanOrEqual(stop)
}

func rrTarget(dir Direction, entry, risk, rr decimal.Decimal) decimal.Decimal {
	return entry.Add(dir.sign().Mul(rr).Mul(risk))
}
