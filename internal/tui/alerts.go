package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/simonvc/pocketledger/internal/client"
	"github.com/simonvc/pocketledger/internal/ledger"
)

type alertMsg struct {
	sig ledger.BudgetSignal
}

type alertsClosedMsg struct {
	err error
}

// alertFeed bridges the websocket alert stream into tea messages.
type alertFeed struct {
	ch   chan ledger.BudgetSignal
	errc chan error
}

func startAlerts(ctx context.Context, c *client.Client) *alertFeed {
	f := &alertFeed{
		ch:   make(chan ledger.BudgetSignal, 8),
		errc: make(chan error, 1),
	}
	go func() {
		f.errc <- c.WatchAlerts(ctx, func(sig ledger.BudgetSignal) {
			select {
			case f.ch <- sig:
			case <-ctx.Done():
			}
		})
	}()
	return f
}

// next waits for one alert. Re-issue it after each alertMsg.
func (f *alertFeed) next() tea.Cmd {
	return func() tea.Msg {
		select {
		case sig := <-f.ch:
			return alertMsg{sig: sig}
		case err := <-f.errc:
			return alertsClosedMsg{err: err}
		}
	}
}

func describeAlert(sig ledger.BudgetSignal) string {
	verb := "nearing its limit"
	if sig.Kind == ledger.SignalExceeded {
		verb = "over its limit"
	}
	return fmt.Sprintf("Budget %s..%s is %s: spent %s of %s",
		sig.Budget.StartDate, sig.Budget.EndDate, verb, sig.Spent.StringFixed(2), sig.Limit.StringFixed(2))
}
