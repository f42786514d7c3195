package livehttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ladder/internal/gateway/exchange"
	"ladder/internal/position"
	"ladder/internal/signal"
	"ladder/internal/store"
	"ladder/internal/trader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDesk struct {
	mock.Mock
}

func (m *mockDesk) OpenPosition(ctx context.Context, sig signal.OpenSignal) (trader.OpenResult, error) {
	args := m.Called(ctx, sig)
	return args.Get(0).(trader.OpenResult), args.Error(1)
}

func (m *mockDesk) UpdatePrice(ctx context.Context, tick signal.PriceTick) (trader.PriceResult, error) {
	args := m.Called(ctx, tick)
	return args.Get(0).(trader.PriceResult), args.Error(1)
}

func (m *mockDesk) ClosePosition(ctx context.Context, reason string) (trader.CloseResult, error) {
	args := m.Called(ctx, reason)
	return args.Get(0).(trader.CloseResult), args.Error(1)
}

func (m *mockDesk) CurrentPosition() (trader.PositionView, bool) {
	args := m.Called()
	return args.Get(0).(trader.PositionView), args.Bool(1)
}

func (m *mockDesk) PositionEvents(ctx context.Context, positionID string, limit int) ([]store.EventRecord, error) {
	args := m.Called(ctx, positionID, limit)
	recs, _ := args.Get(0).([]store.EventRecord)
	return recs, args.Error(1)
}

func newTestServer(t *testing.T, desk Desk) http.Handler {
	t.Helper()
	srv, err := NewServer(ServerConfig{Desk: desk})
	require.NoError(t, err)
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

const webhookBody = `{"entry": 100, "sl": "95", "signal": "long", "atr": 1.2, "symbol": "SOLUSDT"}`

func TestNewServerRequiresDesk(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	rec, out := do(t, newTestServer(t, &mockDesk{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])
}

func TestWebhook(t *testing.T) {
	matchSignal := mock.MatchedBy(func(sig signal.OpenSignal) bool {
		return sig.Entry == 100 && sig.StopLoss == 95 && sig.Direction == position.Long && sig.Symbol == "SOLUSDT"
	})

	t.Run("opens", func(t *testing.T) {
		desk := &mockDesk{}
		desk.On("OpenPosition", mock.Anything, matchSignal).
			Return(trader.OpenResult{Position: trader.PositionView{ID: "pos-1", Symbol: "SOL/USDT"}}, nil)
		rec, out := do(t, newTestServer(t, desk), http.MethodPost, "/webhook", webhookBody)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, out["ok"])
		assert.Equal(t, "pos-1", out["position_id"])
		received, _ := out["received"].(map[string]any)
		assert.Equal(t, "95", received["sl"])
		desk.AssertExpectations(t)
	})

	t.Run("bad payload never reaches the desk", func(t *testing.T) {
		desk := &mockDesk{}
		rec, out := do(t, newTestServer(t, desk), http.MethodPost, "/webhook", `{"entry": 100}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, false, out["ok"])
		desk.AssertNotCalled(t, "OpenPosition", mock.Anything, mock.Anything)
	})

	cases := []struct {
		name string
		err  error
		code int
	}{
		{"position open", trader.ErrPositionOpen, http.StatusConflict},
		{"symbol not allowed", trader.ErrSymbolNotAllowed, http.StatusUnprocessableEntity},
		{"venue failure", &trader.OrderError{Action: "entry", Err: errors.New("boom")}, http.StatusBadGateway},
		{"stopped", trader.ErrTraderStopped, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			desk := &mockDesk{}
			desk.On("OpenPosition", mock.Anything, mock.Anything).Return(trader.OpenResult{}, tc.err)
			rec, out := do(t, newTestServer(t, desk), http.MethodPost, "/webhook", webhookBody)
			assert.Equal(t, tc.code, rec.Code)
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestPriceUpdate(t *testing.T) {
	t.Run("no trade active", func(t *testing.T) {
		desk := &mockDesk{}
		desk.On("UpdatePrice", mock.Anything, signal.PriceTick{Price: 101}).
			Return(trader.PriceResult{}, trader.ErrNoActivePosition)
		rec, out := do(t, newTestServer(t, desk), http.MethodPost, "/price_update", `{"price": 101}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No trade active", out["status"])
	})

	t.Run("hold with events", func(t *testing.T) {
		desk := &mockDesk{}
		desk.On("UpdatePrice", mock.Anything, signal.PriceTick{Price: 112.5}).Return(trader.PriceResult{
			PositionID: "pos-1",
			Decision: position.Decision{
				Action: position.ActionHold,
				Events: []position.Event{{Kind: position.EventTargetHit, Target: 1, Level: 112.5, Price: 112.5}},
			},
		}, nil)
		rec, out := do(t, newTestServer(t, desk), http.MethodPost, "/price_update", `{"price": "112.5"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "hold", out["status"])
		events, _ := out["events"].([]any)
		require.Len(t, events, 1)
		assert.Equal(t, "target_hit", events[0].(map[string]any)["kind"])
	})

	t.Run("quiet tick returns empty events", func(t *testing.T) {
		desk := &mockDesk{}
		desk.On("UpdatePrice", mock.Anything, mock.Anything).
			Return(trader.PriceResult{Decision: position.Decision{Action: position.ActionHold}}, nil)
		_, out := do(t, newTestServer(t, desk), http.MethodPost, "/price_update", `{"price": 101}`)
		assert.Equal(t, []any{}, out["events"])
	})

	t.Run("exit", func(t *testing.T) {
		desk := &mockDesk{}
		desk.On("UpdatePrice", mock.Anything, mock.Anything).Return(trader.PriceResult{
			Decision: position.Decision{Action: position.ActionExit},
			Closed:   true,
		}, nil)
		rec, out := do(t, newTestServer(t, desk), http.MethodPost, "/price_update", `{"price": 102}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "exit", out["status"])
		assert.Equal(t, true, out["closed"])
	})

	t.Run("exit but close failed", func(t *testing.T) {
		desk := &mockDesk{}
		desk.On("UpdatePrice", mock.Anything, mock.Anything).Return(trader.PriceResult{
			Decision: position.Decision{Action: position.ActionExit},
		}, &trader.OrderError{Action: "close", Err: errors.New("venue down")})
		rec, out := do(t, newTestServer(t, desk), http.MethodPost, "/price_update", `{"price": 102}`)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "exit", out["status"])
		assert.Equal(t, false, out["closed"])
		assert.Contains(t, out["error"], "venue down")
	})

	t.Run("symbol mismatch", func(t *testing.T) {
		desk := &mockDesk{}
		desk.On("UpdatePrice", mock.Anything, mock.Anything).Return(trader.PriceResult{}, trader.ErrSymbolMismatch)
		rec, _ := do(t, newTestServer(t, desk), http.MethodPost, "/price_update", `{"price": 1, "symbol": "BTCUSDT"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("bad payload", func(t *testing.T) {
		desk := &mockDesk{}
		rec, out := do(t, newTestServer(t, desk), http.MethodPost, "/price_update", `{"price": "abc"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "error", out["status"])
		desk.AssertNotCalled(t, "UpdatePrice", mock.Anything, mock.Anything)
	})
}

func TestPositionEndpoints(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		desk := &mockDesk{}
		desk.On("CurrentPosition").Return(trader.PositionView{}, false)
		rec, _ := do(t, newTestServer(t, desk), http.MethodGet, "/api/position", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("current", func(t *testing.T) {
		desk := &mockDesk{}
		desk.On("CurrentPosition").Return(trader.PositionView{ID: "pos-1", Symbol: "SOL/USDT", Side: "long"}, true)
		rec, out := do(t, newTestServer(t, desk), http.MethodGet, "/api/position", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		pos, _ := out["position"].(map[string]any)
		assert.Equal(t, "pos-1", pos["id"])
	})

	t.Run("close", func(t *testing.T) {
		desk := &mockDesk{}
		desk.On("ClosePosition", mock.Anything, "flatten").Return(trader.CloseResult{
			Position: trader.PositionView{ID: "pos-1"},
			Order:    &exchange.OrderResult{OrderID: "o-2"},
			Reason:   "flatten",
		}, nil)
		rec, out := do(t, newTestServer(t, desk), http.MethodPost, "/api/position/close", `{"reason": "flatten"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "closed", out["status"])
		assert.Equal(t, "pos-1", out["position_id"])
	})

	t.Run("close without position", func(t *testing.T) {
		desk := &mockDesk{}
		desk.On("ClosePosition", mock.Anything, "").Return(trader.CloseResult{}, trader.ErrNoActivePosition)
		rec, _ := do(t, newTestServer(t, desk), http.MethodPost, "/api/position/close", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("events", func(t *testing.T) {
		desk := &mockDesk{}
		desk.On("PositionEvents", mock.Anything, "pos-1", 5).Return([]store.EventRecord{
			{ID: "e1", Type: "POSITION_OPENED", PositionID: "pos-1", Payload: json.RawMessage(`{}`)},
		}, nil)
		rec, out := do(t, newTestServer(t, desk), http.MethodGet, "/api/position/pos-1/events?limit=5", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		events, _ := out["events"].([]any)
		assert.Len(t, events, 1)
	})
}
