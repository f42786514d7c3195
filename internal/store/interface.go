// Package store defines the append-only journal of position facts. The
// journal is an audit trail: nothing reads it back to rebuild a tracker.
package store

import (
	"context"
	"encoding/json"
	"time"
)

// EventRecord is one journaled fact about a position.
type EventRecord struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	PositionID string          `json:"position_id"`
	Symbol     string          `json:"symbol"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
}

// EventStore persists EventRecords. List returns the newest limit records
// for positionID, oldest first; an empty positionID lists across positions.
type EventStore interface {
	Append(ctx context.Context, rec EventRecord) error
	List(ctx context.Context, positionID string, limit int) ([]EventRecord, error)
	Close() error
}

// Nop discards everything; used when the journal is disabled.
type Nop struct{}

func (Nop) Append(context.Context, EventRecord) error { return nil }

func (Nop) List(context.Context, string, int) ([]EventRecord, error) { return nil, nil }

func (Nop) Close() error { return nil }

const DefaultListLimit = 200

// ClampLimit maps non-positive or oversized limits onto DefaultListLimit / 1000.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
