package trader

import (
	"context"
	"fmt"
	"time"

	"ladder/internal/gateway/exchange"
	"ladder/internal/gateway/notifier"
	"ladder/internal/logger"
	"ladder/internal/position"
)

func (t *Trader) send(msg notifier.Message) {
	msg.Timestamp = time.Now()
	if err := t.notifier.SendText(context.Background(), msg.RenderMarkdown()); err != nil {
		logger.Warnf("Trader: notify failed: %v", err)
	}
}

func (t *Trader) notifyOpened(view PositionView) {
	snap := view.Tracker
	lines := []string{
		fmt.Sprintf("Entry: %g", snap.EntryPrice),
		fmt.Sprintf("Stop loss: %g", snap.StopLossPrice),
		fmt.Sprintf("Size: %g", view.Size),
	}
	targets := make([]string, 0, len(snap.Targets))
	for i, level := range snap.Targets {
		targets = append(targets, fmt.Sprintf("T%d (%gR): %g", i+1, position.RiskMultiples[i], level))
	}
	t.send(notifier.Message{
		Icon:  "🟢",
		Title: fmt.Sprintf("Opened %s %s", view.Symbol, view.Side),
		Sections: []notifier.Section{
			{Title: "Position", Lines: lines},
			{Title: "Targets", Lines: targets},
		},
		Footer: "ID: " + view.ID,
	})
}

func (t *Trader) notifyTarget(live *livePosition, e position.Event) {
	msg := notifier.Message{Icon: "🎯", Footer: "ID: " + live.id}
	switch e.Kind {
	case position.EventTargetHit:
		msg.Title = fmt.Sprintf("%s target %d reached", live.symbol, e.Target)
		msg.Sections = []notifier.Section{{Lines: []string{
			fmt.Sprintf("Level: %g", e.Level),
			fmt.Sprintf("Price: %g", e.Price),
		}}}
	case position.EventTrailingActivated:
		msg.Icon = "🛡"
		msg.Title = fmt.Sprintf("%s trailing stop armed", live.symbol)
		msg.Sections = []notifier.Section{{Lines: []string{
			fmt.Sprintf("Stop: %g", e.Stop),
			fmt.Sprintf("Reference: %g", e.Reference),
		}}}
	default:
		return
	}
	t.send(msg)
}

func (t *Trader) notifyClosed(view PositionView, reason string, price float64, order *exchange.OrderResult) {
	lines := []string{
		fmt.Sprintf("Reason: %s", reason),
		fmt.Sprintf("Price: %g", price),
	}
	if order != nil {
		lines = append(lines, fmt.Sprintf("Order: %s (%s)", order.OrderID, order.Status))
	}
	t.send(notifier.Message{
		Icon:     "🔴",
		Title:    fmt.Sprintf("Closed %s %s", view.Symbol, view.Side),
		Sections: []notifier.Section{{Lines: lines}},
		Footer:   "ID: " + view.ID,
	})
}

func (t *Trader) notifyCloseFailed(view PositionView, reason string, err error) {
	t.send(notifier.Message{
		Icon:  "⚠️",
		Title: fmt.Sprintf("Close of %s failed", view.Symbol),
		Sections: []notifier.Section{{Lines: []string{
			fmt.Sprintf("Reason: %s", reason),
			fmt.Sprintf("Error: %v", err),
			"Tracking continues; the next price tick retries.",
		}}},
		Footer: "ID: " + view.ID,
	})
}
