// Package notify delivers budget threshold signals after their unit of work
// has committed.
package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/simonvc/pocketledger/internal/ledger"
)

type Notifier interface {
	OnBudgetWarning(ctx context.Context, sig ledger.BudgetSignal)
	OnBudgetExceeded(ctx context.Context, sig ledger.BudgetSignal)
}

// Dispatch routes sig to the callback matching its kind.
func Dispatch(ctx context.Context, n Notifier, sig ledger.BudgetSignal) {
	switch sig.Kind {
	case ledger.SignalWarning:
		n.OnBudgetWarning(ctx, sig)
	case ledger.SignalExceeded:
		n.OnBudgetExceeded(ctx, sig)
	}
}

type Nop struct{}

func (Nop) OnBudgetWarning(context.Context, ledger.BudgetSignal)  {}
func (Nop) OnBudgetExceeded(context.Context, ledger.BudgetSignal) {}

// Log writes each signal as a structured log line.
type Log struct {
	log zerolog.Logger
}

func NewLog(log zerolog.Logger) *Log {
	return &Log{log: log.With().Str("component", "budget-alerts").Logger()}
}

func (n *Log) OnBudgetWarning(_ context.Context, sig ledger.BudgetSignal) {
	n.event(n.log.Warn(), sig).Msg("budget approaching limit")
}

func (n *Log) OnBudgetExceeded(_ context.Context, sig ledger.BudgetSignal) {
	n.event(n.log.Warn(), sig).Msg("budget exceeded")
}

func (n *Log) event(e *zerolog.Event, sig ledger.BudgetSignal) *zerolog.Event {
	return e.
		Str("budget_id", sig.Budget.ID).
		Str("user_id", sig.Budget.UserID).
		Str("category_id", sig.Budget.CategoryID).
		Str("spent", sig.Spent.String()).
		Str("limit", sig.Limit.String())
}

// Multi fans a signal out to several notifiers in order.
type Multi []Notifier

func (m Multi) OnBudgetWarning(ctx context.Context, sig ledger.BudgetSignal) {
	for _, n := range m {
		n.OnBudgetWarning(ctx, sig)
	}
}

func (m Multi) OnBudgetExceeded(ctx context.Context, sig ledger.BudgetSignal) {
	for _, n := range m {
		n.OnBudgetExceeded(ctx, sig)
	}
}

// Recorder keeps every signal it receives.
type Recorder struct {
	mu      sync.Mutex
	signals []ledger.BudgetSignal
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) OnBudgetWarning(_ context.Context, sig ledger.BudgetSignal)  { r.add(sig) }
func (r *Recorder) OnBudgetExceeded(_ context.Context, sig ledger.BudgetSignal) { r.add(sig) }

func (r *Recorder) add(sig ledger.BudgetSignal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, sig)
}

// Signals returns a copy of everything recorded so far.
func (r *Recorder) Signals() []ledger.BudgetSignal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ledger.BudgetSignal(nil), r.signals...)
}
