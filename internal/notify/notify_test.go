package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simonvc/pocketledger/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signal(kind ledger.Signal, userID string) ledger.BudgetSignal {
	return ledger.BudgetSignal{
		Kind:   kind,
		Budget: ledger.Budget{
			ID:         "b1",
			UserID:     userID,
			CategoryID: "food",
			StartDate:  civil.Date{Year: 2024, Month: 3, Day: 1},
			EndDate:    civil.Date{Year: 2024, Month: 3, Day: 31},
		},
		Spent:  decimal.NewFromInt(650),
		Limit:  decimal.NewFromInt(500),
		At:     time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestDispatchRoutesByKind(t *testing.T) {
	rec := NewRecorder()
	ctx := context.Background()
	Dispatch(ctx, rec, signal(ledger.SignalExceeded, "u1"))
	Dispatch(ctx, rec, signal(ledger.SignalWarning, "u1"))
	Dispatch(ctx, rec, signal(ledger.SignalNone, "u1"))

	got := rec.Signals()
	require.Len(t, got, 2)
	assert.Equal(t, ledger.SignalExceeded, got[0].Kind)
	assert.Equal(t, ledger.SignalWarning, got[1].Kind)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLog(zerolog.New(&buf))
	n.OnBudgetExceeded(context.Background(), signal(ledger.SignalExceeded, "u1"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "budget exceeded", line["message"])
	assert.Equal(t, "b1", line["budget_id"])
	assert.Equal(t, "650", line["spent"])
	assert.Equal(t, "warn", line["level"])
}

func TestMultiFansOut(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	m := Multi{a, Nop{}, b}
	m.OnBudgetWarning(context.Background(), signal(ledger.SignalWarning, "u1"))
	assert.Len(t, a.Signals(), 1)
	assert.Len(t, b.Signals(), 1)
}

func TestHubStreamsOwnAlertsOnly(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("user"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"?user=u1", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	hub.OnBudgetWarning(ctx, signal(ledger.SignalWarning, "someone-else"))
	hub.OnBudgetExceeded(ctx, signal(ledger.SignalExceeded, "u1"))

	var got ledger.BudgetSignal
	require.NoError(t, wsjson.Read(ctx, conn, &got))
	assert.Equal(t, ledger.SignalExceeded, got.Kind)
	assert.Equal(t, "u1", got.Budget.UserID)
	assert.True(t, decimal.NewFromInt(650).Equal(got.Spent))

	conn.Close(websocket.StatusNormalClosure, "")
	require.Eventually(t, func() bool { return hub.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
}
