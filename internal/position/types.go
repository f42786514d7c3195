package position

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Direction is the side of the tracked position.
type Direction int

const (
	Long Direction = iota
	Short
)

func (d Direction) String() string {
	if d == Short {
		return "short"
	}
	return "long"
}

func (d Direction) sign() decimal.Decimal {
	if d == Short {
		return decMinusOne
	}
	return decOne
}

// MarshalText lets Direction travel as "long"/"short" in JSON payloads.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	parsed, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirection accepts long/short and the buy/sell aliases used by alert senders.
func ParseDirection(raw string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "long", "buy":
		return Long, nil
	case "short", "sell":
		return Short, nil
	default:
		return Long, fmt.Errorf("unknown direction %q", raw)
	}
}

// Action is the decision returned for each observed price.
type Action string

const (
	ActionHold Action = "hold"
	ActionExit Action = "exit"
)

// EventKind names the domain transitions a tracker can report.
type EventKind string

const (
	EventTargetHit         EventKind = "target_hit"
	EventTrailingActivated EventKind = "trailing_activated"
	EventStopMoved         EventKind = "stop_moved"
	EventExitTriggered     EventKind = "exit_triggered"
)

// Event is one observation emitted by Observe. Fields not relevant to Kind are zero.
type Event struct {
	Kind      EventKind `json:"kind"`
	Target    int       `json:"target,omitempty"`
	Level     float64   `json:"level"`
	Price     float64   `json:"price"`
	PrevStop  float64   `json:"prev_stop"`
	Stop      float64   `json:"stop"`
	Reference float64   `json:"reference,omitempty"`
}

// Decision is the result of one Observe call.
type Decision struct {
	Action Action  `json:"status"`
	Events []Event `json:"events"`
}

func (d Decision) Exit() bool { return d.Action == ActionExit }

// Snapshot is a read-only copy of tracker state.
type Snapshot struct {
	Direction      Direction  `json:"direction"`
	EntryPrice     float64    `json:"entry_price"`
	StopLossPrice  float64    `json:"stop_loss_price"`
	PositionSize   float64    `json:"position_size"`
	ATR            float64    `json:"atr"`
	RiskUnit       float64    `json:"risk_unit"`
	TrailingStep   float64    `json:"trailing_step"`
	Targets        [4]float64 `json:"targets"`
	TargetHit      [4]bool    `json:"target_hit"`
	TrailingActive bool       `json:"trailing_active"`
	TrailingStop   *float64   `json:"trailing_stop_price,omitempty"`
	LastReference  *float64   `json:"last_trailing_reference_price,omitempty"`
}
