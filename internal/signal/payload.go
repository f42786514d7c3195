// Package signal parses the inbound webhook contract: open-position alerts
// and price ticks. Nothing here touches position state.
package signal

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"ladder/internal/position"

	"github.com/tidwall/gjson"
)

// OpenSignal is a validated "open position" alert.
type OpenSignal struct {
	Entry     float64            `json:"entry"`
	StopLoss  float64            `json:"sl"`
	Direction position.Direction `json:"signal"`
	ATR       float64            `json:"atr"`
	Symbol    string             `json:"symbol"`
	Size      float64            `json:"size,omitempty"` // 0 = use the configured default
	Raw       json.RawMessage    `json:"-"`
}

// PriceTick is a validated price update.
type PriceTick struct {
	Price  float64 `json:"price"`
	Symbol string  `json:"symbol,omitempty"`
}

// ValidationError reports a payload the caller must fix; it maps to HTTP 400.
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func ParseOpen(raw []byte) (OpenSignal, error) {
	res, doc, err := validate(raw, schemaOpen, "entry", "sl", "atr", "size")
	if err != nil {
		return OpenSignal{}, err
	}
	sig := OpenSignal{
		Symbol: strings.TrimSpace(res.Get("symbol").String()),
		Raw:    append(json.RawMessage(nil), raw...),
	}
	if sig.Entry, err = finite(doc, "entry"); err != nil {
		return OpenSignal{}, err
	}
	if sig.StopLoss, err = finite(doc, "sl"); err != nil {
		return OpenSignal{}, err
	}
	if sig.ATR, err = finite(doc, "atr"); err != nil {
		return OpenSignal{}, err
	}
	if _, ok := doc["size"]; ok {
		if sig.Size, err = finite(doc, "size"); err != nil {
			return OpenSignal{}, err
		}
	}
	dir, err := position.ParseDirection(res.Get("signal").String())
	if err != nil {
		return OpenSignal{}, &ValidationError{Msg: "field signal", Err: err}
	}
	sig.Direction = dir
	return sig, nil
}

func ParsePrice(raw []byte) (PriceTick, error) {
	res, doc, err := validate(raw, schemaPrice, "price")
	if err != nil {
		return PriceTick{}, err
	}
	price, err := finite(doc, "price")
	if err != nil {
		return PriceTick{}, err
	}
	return PriceTick{
		Price:  price,
		Symbol: strings.TrimSpace(res.Get("symbol").String()),
	}, nil
}

// validate returns the gjson view of raw for string fields and the decoded
// document, numeric strings already coerced, for numeric fields.
func validate(raw []byte, schemaName string, numeric ...string) (gjson.Result, map[string]any, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return gjson.Result{}, nil, invalid("empty body")
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, nil, invalid("body is not valid JSON")
	}
	res := gjson.ParseBytes(raw)
	if !res.IsObject() {
		return gjson.Result{}, nil, invalid("body must be a JSON object")
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return gjson.Result{}, nil, &ValidationError{Msg: "decode body", Err: err}
	}
	coerceNumbers(doc, numeric...)
	sch, err := compiledSchema(schemaName)
	if err != nil {
		return gjson.Result{}, nil, err
	}
	if err := sch.Validate(doc); err != nil {
		return gjson.Result{}, nil, &ValidationError{Msg: "payload rejected", Err: err}
	}
	return res, doc, nil
}

func finite(doc map[string]any, field string) (float64, error) {
	v, ok := doc[field].(float64)
	if !ok {
		return 0, invalid("field %s must be a number", field)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, invalid("field %s must be a finite number", field)
	}
	return v, nil
}
