package position

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(events []Event) []EventKind {
	out := make([]EventKind, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}

func TestNewComputesTargets(t *testing.T) {
	t.Run("long", func(t *testing.T) {
		tr := New(100, 95, 100, Long, 1.2)
		assert.Equal(t, 5.0, tr.RiskUnit())
		assert.Equal(t, 2.5, tr.TrailingStep())
		assert.Equal(t, [4]float64{112.5, 115, 117.5, 120}, tr.Targets())
		assert.Equal(t, [4]bool{}, tr.TargetHit())
		assert.False(t, tr.TrailingActive())
		_, ok := tr.TrailingStop()
		assert.False(t, ok)
	})
	t.Run("short", func(t *testing.T) {
		tr := New(50, 52, 10, Short, 0.4)
		assert.Equal(t, 2.0, tr.RiskUnit())
		assert.Equal(t, [4]float64{45, 44, 43, 42}, tr.Targets())
	})
	t.Run("atr and size are stored only", func(t *testing.T) {
		a := New(100, 95, 1, Long, 0)
		b := New(100, 95, 500, Long, 42)
		assert.Equal(t, a.Targets(), b.Targets())
		assert.Equal(t, 42.0, b.Snapshot().ATR)
		assert.Equal(t, 500.0, b.Snapshot().PositionSize)
	})
}

func TestTargetsOrderedOnProfitSide(t *testing.T) {
	cases := []struct {
		entry, sl float64
		dir       Direction
	}{
		{100, 95, Long},
		{100, 105, Long},
		{0.0012, 0.0011, Long},
		{50, 52, Short},
		{50, 48, Short},
		{27150.5, 27310.25, Short},
	}
	for _, tc := range cases {
		tr := New(tc.entry, tc.sl, 1, tc.dir, 0)
		targets := tr.Targets()
		prev := tc.entry
		for i, level := range targets {
			if tc.dir == Long {
				assert.Greater(t, level, prev, "target %d", i+1)
			} else {
				assert.Less(t, level, prev, "target %d", i+1)
			}
			prev = level
		}
	}
}

func TestScenarioLong(t *testing.T) {
	tr := New(100, 95, 100, Long, 1)

	// A: first two targets, trailing armed at entry.
	d := tr.Observe(112.5)
	assert.Equal(t, ActionHold, d.Action)
	assert.Equal(t, []EventKind{EventTargetHit}, kinds(d.Events))
	assert.Equal(t, 1, d.Events[0].Target)
	assert.Equal(t, 112.5, d.Events[0].Level)
	assert.Equal(t, [4]bool{true, false, false, false}, tr.TargetHit())

	d = tr.Observe(115)
	assert.Equal(t, ActionHold, d.Action)
	assert.Equal(t, []EventKind{EventTargetHit, EventTrailingActivated}, kinds(d.Events))
	assert.True(t, tr.TrailingActive())
	stop, ok := tr.TrailingStop()
	require.True(t, ok)
	assert.Equal(t, 100.0, stop)
	snap := tr.Snapshot()
	require.NotNil(t, snap.LastReference)
	assert.Equal(t, 115.0, *snap.LastReference)

	// B: progress 2.6 >= 2.5 ratchets one step.
	d = tr.Observe(117.6)
	assert.Equal(t, ActionHold, d.Action)
	assert.Equal(t, []EventKind{EventTargetHit, EventStopMoved}, kinds(d.Events))
	assert.Equal(t, 3, d.Events[0].Target)
	assert.Equal(t, 100.0, d.Events[1].PrevStop)
	assert.Equal(t, 102.5, d.Events[1].Stop)
	stop, _ = tr.TrailingStop()
	assert.Equal(t, 102.5, stop)
	assert.Equal(t, 117.6, *tr.Snapshot().LastReference)

	// C: price falls through the stop. The 15.6 drop is itself one step of
	// progress, so the stop ratchets to 105 before the exit check.
	d = tr.Observe(102.0)
	assert.Equal(t, ActionExit, d.Action)
	assert.True(t, d.Exit())
	assert.Equal(t, []EventKind{EventStopMoved, EventExitTriggered}, kinds(d.Events))
	last := d.Events[len(d.Events)-1]
	assert.Equal(t, 105.0, last.Stop)
	assert.Equal(t, 102.0, last.Price)
}

func TestScenarioShort(t *testing.T) {
	tr := New(50, 52, 10, Short, 0.5)

	d := tr.Observe(45)
	assert.Equal(t, ActionHold, d.Action)
	assert.Equal(t, [4]bool{true, false, false, false}, tr.TargetHit())

	d = tr.Observe(44)
	assert.Equal(t, ActionHold, d.Action)
	assert.True(t, tr.TrailingActive())
	stop, ok := tr.TrailingStop()
	require.True(t, ok)
	assert.Equal(t, 50.0, stop)

	// step is 1; 42.9 is 1.1 below the reference so the stop drops to 49.
	d = tr.Observe(42.9)
	assert.Equal(t, ActionHold, d.Action)
	stop, _ = tr.TrailingStop()
	assert.Equal(t, 49.0, stop)

	d = tr.Observe(49)
	assert.Equal(t, ActionExit, d.Action)
}

func TestDegenerateZeroRisk(t *testing.T) {
	tr := New(100, 100, 1, Long, 0)
	assert.Equal(t, 0.0, tr.RiskUnit())
	assert.Equal(t, [4]float64{100, 100, 100, 100}, tr.Targets())

	d := tr.Observe(100)
	assert.Equal(t, ActionHold, d.Action)
	assert.Equal(t, [4]bool{true, false, false, false}, tr.TargetHit())
	assert.False(t, tr.TrailingActive())

	// zero step: arming, ratchet and exit all happen on the T2 tick.
	d = tr.Observe(100)
	assert.Equal(t, ActionExit, d.Action)
	assert.Equal(t, []EventKind{EventTargetHit, EventTrailingActivated, EventStopMoved, EventExitTriggered}, kinds(d.Events))
	stop, _ := tr.TrailingStop()
	assert.Equal(t, 100.0, stop)
}

func TestGappedPriceRegistersOneTargetPerCall(t *testing.T) {
	tr := New(100, 95, 1, Long, 0)

	d := tr.Observe(130)
	assert.Equal(t, []EventKind{EventTargetHit}, kinds(d.Events))
	assert.Equal(t, [4]bool{true, false, false, false}, tr.TargetHit())
	assert.False(t, tr.TrailingActive())

	tr.Observe(130)
	assert.Equal(t, [4]bool{true, true, false, false}, tr.TargetHit())
	assert.True(t, tr.TrailingActive())

	tr.Observe(130)
	tr.Observe(130)
	assert.Equal(t, [4]bool{true, true, true, true}, tr.TargetHit())
}

func TestLargeMoveRatchetsOneStep(t *testing.T) {
	tr := New(100, 95, 1, Long, 0)
	tr.Observe(112.5)
	tr.Observe(115)

	// 25 points is ten steps, the stop still moves by one.
	d := tr.Observe(140)
	stop, _ := tr.TrailingStop()
	assert.Equal(t, 102.5, stop)
	assert.Equal(t, ActionHold, d.Action)
	assert.Equal(t, 140.0, *tr.Snapshot().LastReference)
}

func TestRatchetOnAdverseMove(t *testing.T) {
	// progress is absolute, so a pullback of one step also ratchets.
	tr := New(100, 95, 1, Long, 0)
	tr.Observe(112.5)
	tr.Observe(115)

	d := tr.Observe(112.4)
	stop, _ := tr.TrailingStop()
	assert.Equal(t, 102.5, stop)
	assert.Equal(t, ActionHold, d.Action)
}

func TestQuietPriceLeavesStateUnchanged(t *testing.T) {
	tr := New(100, 95, 1, Long, 0)
	tr.Observe(112.5)
	tr.Observe(115)
	before := tr.Snapshot()

	d := tr.Observe(116)
	assert.Equal(t, ActionHold, d.Action)
	assert.Empty(t, d.Events)
	assert.Equal(t, before, tr.Snapshot())

	fresh := New(100, 95, 1, Long, 0)
	initial := fresh.Snapshot()
	d = fresh.Observe(105)
	assert.Empty(t, d.Events)
	assert.Equal(t, initial, fresh.Snapshot())
}

func TestExitCheckedAfterRatchetSameCall(t *testing.T) {
	tr := New(50, 52, 1, Short, 0)
	tr.Observe(45)
	tr.Observe(44)

	// 51 is 7 above reference: stop ratchets 50 -> 49, then 51 >= 49 exits.
	d := tr.Observe(51)
	assert.Equal(t, []EventKind{EventStopMoved, EventExitTriggered}, kinds(d.Events))
	assert.Equal(t, ActionExit, d.Action)
	stop, _ := tr.TrailingStop()
	assert.Equal(t, 49.0, stop)
}

func TestMonotonicStateAcrossSequence(t *testing.T) {
	prices := []float64{101, 113, 112, 115.2, 118, 116, 121, 119.5, 124, 122, 130, 127.4, 131}
	for _, dir := range []Direction{Long, Short} {
		entry, sl := 100.0, 95.0
		if dir == Short {
			sl = 105
		}
		tr := New(entry, sl, 1, dir, 0)
		var prevHit [4]bool
		prevActive := false
		var prevStop float64
		for _, raw := range prices {
			price := raw
			if dir == Short {
				price = 2*entry - raw
			}
			tr.Observe(price)
			hit := tr.TargetHit()
			for i := range hit {
				if prevHit[i] {
					assert.True(t, hit[i], "target %d reverted", i+1)
				}
			}
			if prevActive {
				assert.True(t, tr.TrailingActive())
				stop, ok := tr.TrailingStop()
				require.True(t, ok)
				if dir == Long {
					assert.GreaterOrEqual(t, stop, prevStop)
				} else {
					assert.LessOrEqual(t, stop, prevStop)
				}
			}
			prevHit = hit
			prevActive = tr.TrailingActive()
			prevStop, _ = tr.TrailingStop()
		}
		assert.True(t, prevActive, "%s should have armed trailing", dir)
	}
}

func TestParseDirection(t *testing.T) {
	for raw, want := range map[string]Direction{
		"long": Long, "LONG": Long, " buy ": Long,
		"short": Short, "Sell": Short,
	} {
		got, err := ParseDirection(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	_, err := ParseDirection("flat")
	assert.Error(t, err)
}

func TestEventKeepsZeroStop(t *testing.T) {
	raw, err := json.Marshal(Event{Kind: EventStopMoved, Price: 0.4, PrevStop: 0, Stop: 0, Reference: 0.4})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"stop_moved","level":0,"price":0.4,"prev_stop":0,"stop":0,"reference":0.4}`, string(raw))

	raw, err = json.Marshal(Event{Kind: EventExitTriggered, Price: 0, Stop: 0})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"stop":0`)
}
