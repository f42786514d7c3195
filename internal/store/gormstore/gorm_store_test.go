package gormstore

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"ladder/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndList(t *testing.T) {
	s, err := NewGormStore(filepath.Join(t.TempDir(), "nested", "ladder.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recs := []store.EventRecord{
		{Type: "POSITION_OPENED", PositionID: "p1", Symbol: "solusdt", Payload: json.RawMessage(`{"entry":100}`), CreatedAt: base},
		{Type: "TARGET_HIT", PositionID: "p1", Symbol: "SOLUSDT", Payload: json.RawMessage(`{"target":1}`), CreatedAt: base.Add(time.Second)},
		{Type: "POSITION_OPENED", PositionID: "p2", Symbol: "ETHUSDT", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, rec := range recs {
		require.NoError(t, s.Append(ctx, rec))
	}

	p1, err := s.List(ctx, "p1", 10)
	require.NoError(t, err)
	require.Len(t, p1, 2)
	assert.Equal(t, "POSITION_OPENED", p1[0].Type)
	assert.Equal(t, "TARGET_HIT", p1[1].Type)
	assert.Equal(t, "SOLUSDT", p1[0].Symbol)
	assert.NotEmpty(t, p1[0].ID)
	assert.JSONEq(t, `{"target":1}`, string(p1[1].Payload))
	assert.True(t, p1[1].CreatedAt.Equal(base.Add(time.Second)))

	all, err := s.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.JSONEq(t, `{}`, string(all[2].Payload))

	latest, err := s.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "p2", latest[0].PositionID)
}

func TestNewGormStoreRequiresPath(t *testing.T) {
	_, err := NewGormStore(" ")
	assert.Error(t, err)
}
