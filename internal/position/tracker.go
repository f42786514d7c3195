// Package position holds the take-profit ladder and trailing stop state machine
// for a single open position. It performs no I/O and has no internal locking:
// callers must feed prices to a Tracker one at a time, in arrival order.
package position

import (
	"github.com/shopspring/decimal"
)

// RiskMultiples are the take-profit levels, in risk units from entry.
var RiskMultiples = [4]float64{2.5, 3.0, 3.5, 4.0}

// trailingTarget is the index of the target that arms the trailing stop.
const trailingTarget = 1

// Tracker owns the state of one open position.
type Tracker struct {
	direction Direction
	entry     decimal.Decimal
	stopLoss  decimal.Decimal
	size      decimal.Decimal
	atr       decimal.Decimal

	risk    decimal.Decimal
	step    decimal.Decimal
	targets [4]decimal.Decimal
	hit     [4]bool

	trailingActive bool
	trailingStop   decimal.Decimal
	lastReference  decimal.Decimal
}

// New computes the risk unit, the four targets and the trailing step.
// Every finite input is accepted; entry == stopLoss yields a zero risk unit
// and four targets equal to entry.
func New(entry, stopLoss, size float64, dir Direction, atr float64) *Tracker {
	t := &Tracker{
		direction: dir,
		entry:     decFromFloat(entry),
		stopLoss:  decFromFloat(stopLoss),
		size:      decFromFloat(size),
		atr:       decFromFloat(atr),
	}
	t.risk = t.entry.Sub(t.stopLoss).Abs()
	t.step = t.risk.Mul(decHalf)
	for i, rr := range RiskMultiples {
		t.targets[i] = rrTarget(dir, t.entry, t.risk, decFromFloat(rr))
	}
	return t
}

// Observe advances the state machine with one price and returns the decision
// together with the events emitted during the call.
//
// At most one new target is registered per call, the earliest unmet one.
// Once trailing is armed the stop ratchets by exactly one step whenever price
// has moved at least one step away from the last reference, and the exit
// check runs after the ratchet.
func (t *Tracker) Observe(price float64) Decision {
	p := decFromFloat(price)
	out := Decision{Action: ActionHold}

	for i := range t.targets {
		if t.hit[i] || !reached(t.direction, p, t.targets[i]) {
			continue
		}
		t.hit[i] = true
		out.Events = append(out.Events, Event{
			Kind:   EventTargetHit,
			Target: i + 1,
			Level:  decToFloat(t.targets[i]),
			Price:  price,
		})
		if i == trailingTarget {
			t.trailingActive = true
			t.trailingStop = t.entry
			t.lastReference = p
			out.Events = append(out.Events, Event{
				Kind:      EventTrailingActivated,
				Price:     price,
				Stop:      decToFloat(t.trailingStop),
				Reference: price,
			})
		}
		break
	}

	if !t.trailingActive {
		return out
	}

	if p.Sub(t.lastReference).Abs().GreaterThanOrEqual(t.step) {
		prev := t.trailingStop
		t.trailingStop = t.trailingStop.Add(t.direction.sign().Mul(t.step))
		t.lastReference = p
		out.Events = append(out.Events, Event{
			Kind:      EventStopMoved,
			Price:     price,
			PrevStop:  decToFloat(prev),
			Stop:      decToFloat(t.trailingStop),
			Reference: price,
		})
	}

	if breached(t.direction, p, t.trailingStop) {
		out.Action = ActionExit
		out.Events = append(out.Events, Event{
			Kind:  EventExitTriggered,
			Price: price,
			Stop:  decToFloat(t.trailingStop),
		})
	}
	return out
}

// Direction returns the side the tracker was built for.
func (t *Tracker) Direction() Direction { return t.direction }

// RiskUnit returns the absolute entry to stop-loss distance.
func (t *Tracker) RiskUnit() float64 { return decToFloat(t.risk) }

// TrailingStep returns the price move that ratchets the stop one step.
func (t *Tracker) TrailingStep() float64 { return decToFloat(t.step) }

// Targets returns the four take-profit prices, nearest first.
func (t *Tracker) Targets() [4]float64 {
	var out [4]float64
	for i, v := range t.targets {
		out[i] = decToFloat(v)
	}
	return out
}

// TargetHit reports which targets have been registered, nearest first.
func (t *Tracker) TargetHit() [4]bool { return t.hit }

// TrailingActive reports whether the trailing stop is armed.
func (t *Tracker) TrailingActive() bool { return t.trailingActive }

// TrailingStop returns the current trailing stop; ok is false until trailing is armed.
func (t *Tracker) TrailingStop() (price float64, ok bool) {
	if !t.trailingActive {
		return 0, false
	}
	return decToFloat(t.trailingStop), true
}

// Snapshot returns a serializable copy of the tracker state.
func (t *Tracker) Snapshot() Snapshot {
	snap := Snapshot{
		Direction:      t.direction,
		EntryPrice:     decToFloat(t.entry),
		StopLossPrice:  decToFloat(t.stopLoss),
		PositionSize:   decToFloat(t.size),
		ATR:            decToFloat(t.atr),
		RiskUnit:       decToFloat(t.risk),
		TrailingStep:   decToFloat(t.step),
		Targets:        t.Targets(),
		TargetHit:      t.hit,
		TrailingActive: t.trailingActive,
	}
	if t.trailingActive {
		stop := decToFloat(t.trailingStop)
		ref := decToFloat(t.lastReference)
		snap.TrailingStop = &stop
		snap.LastReference = &ref
	}
	return snap
}
