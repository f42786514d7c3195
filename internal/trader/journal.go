package trader

import (
	"context"
	"encoding/json"
	"time"

	"ladder/internal/logger"
	"ladder/internal/position"
	"ladder/internal/store"

	"github.com/google/uuid"
)

const journalTimeout = 2 * time.Second

// record appends one fact to the journal. Journal failures are logged and never
// change trading state.
func (t *Trader) record(typ EventType, positionID, sym string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Errorf("Trader: marshal %s fact: %v", typ, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	rec := store.EventRecord{
		ID:         uuid.NewString(),
		Type:       string(typ),
		PositionID: positionID,
		Symbol:     sym,
		Payload:    raw,
		CreatedAt:  time.Now().UTC(),
	}
	if err := t.store.Append(ctx, rec); err != nil {
		logger.Errorf("Failed to persist event %s: %v", typ, err)
	}
}

// publishEvents logs and journals the tracker's events for one tick.
func (t *Trader) publishEvents(live *livePosition, events []position.Event) {
	log := logger.With("position_id", live.id, "symbol", live.symbol)
	for _, e := range events {
		switch e.Kind {
		case position.EventTargetHit:
			log.Info("target reached", "target", e.Target, "level", e.Level, "price", e.Price)
			t.notifyTarget(live, e)
		case position.EventTrailingActivated:
			log.Info("trailing stop activated", "stop", e.Stop, "reference", e.Reference)
			t.notifyTarget(live, e)
		case position.EventStopMoved:
			log.Info("trailing stop moved", "prev_stop", e.PrevStop, "stop", e.Stop, "reference", e.Reference)
		case position.EventExitTriggered:
			log.Warn("trailing stop hit", "stop", e.Stop, "price", e.Price)
		}
		if typ, ok := factTypes[e.Kind]; ok {
			t.record(typ, live.id, live.symbol, e)
		}
	}
}
