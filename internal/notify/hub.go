package notify

import (
	"context"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/simonvc/pocketledger/internal/ledger"
)

const subscriberBuffer = 16

// Hub pushes signals to websocket subscribers. Each subscriber only sees
// signals for budgets owned by its user.
type Hub struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
	log  zerolog.Logger
}

type subscriber struct {
	userID string
	ch     chan ledger.BudgetSignal
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subs: make(map[*subscriber]struct{}),
		log:  log.With().Str("component", "alert-hub").Logger(),
	}
}

func (h *Hub) OnBudgetWarning(_ context.Context, sig ledger.BudgetSignal)  { h.publish(sig) }
func (h *Hub) OnBudgetExceeded(_ context.Context, sig ledger.BudgetSignal) { h.publish(sig) }

// Subscribers reports the number of open streams.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) publish(sig ledger.BudgetSignal) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		if sub.userID != sig.Budget.UserID {
			continue
		}
		select {
		case sub.ch <- sig:
		default:
			h.log.Warn().Str("user_id", sub.userID).Str("budget_id", sig.Budget.ID).Msg("subscriber too slow, dropping alert")
		}
	}
}

func (h *Hub) subscribe(userID string) *subscriber {
	sub := &subscriber{userID: userID, ch: make(chan ledger.BudgetSignal, subscriberBuffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}

// ServeWS upgrades the request and streams userID's alerts as JSON text
// frames until the client goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	sub := h.subscribe(userID)
	defer h.unsubscribe(sub)

	// Clients never send; CloseRead cancels ctx once the peer closes.
	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sub.ch:
			if err := wsjson.Write(ctx, conn, sig); err != nil {
				h.log.Debug().Err(err).Str("user_id", userID).Msg("ws write")
				return
			}
		}
	}
}
