package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/simonvc/pocketledger/internal/client"
	"github.com/simonvc/pocketledger/internal/ledger"
)

type txnsLoadedMsg struct {
	walletID string
	txns     []ledger.Transaction
	err      error
}

type txnDeleteConfirmedMsg struct {
	id string
}

type txnDeletedMsg struct {
	id  string
	err error
}

// txnListModel lists the transactions touching one wallet.
type txnListModel struct {
	wallet         *ledger.Wallet
	txns           []ledger.Transaction
	cursor         int
	loading        bool
	err            error
	width          int
	height         int
	confirmDelete  bool
	deleteTargetID string
}

func (m *txnListModel) init(c *client.Client, w *ledger.Wallet) tea.Cmd {
	m.wallet = w
	if w == nil {
		m.txns = nil
		return nil
	}
	m.loading = true
	id := w.ID
	return func() tea.Msg {
		txns, err := c.ListWalletTransactions(context.Background(), id)
		return txnsLoadedMsg{walletID: id, txns: txns, err: err}
	}
}

func (m txnListModel) update(msg tea.Msg) (txnListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case txnsLoadedMsg:
		if m.wallet == nil || msg.walletID != m.wallet.ID {
			return m, nil
		}
		m.loading = false
		m.txns = msg.txns
		m.err = msg.err
		if m.cursor >= len(m.txns) {
			m.cursor = max(len(m.txns)-1, 0)
		}

	case txnDeletedMsg:
		m.confirmDelete = false
		m.deleteTargetID = ""
		if msg.err != nil {
			m.err = msg.err
		}

	case tea.KeyMsg:
		if m.confirmDelete {
			switch msg.String() {
			case "y", "Y":
				id := m.deleteTargetID
				m.confirmDelete = false
				return m, func() tea.Msg {
					return txnDeleteConfirmedMsg{id: id}
				}
			default:
				m.confirmDelete = false
				m.deleteTargetID = ""
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.txns)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Delete):
			if id := m.selectedID(); id != "" {
				m.confirmDelete = true
				m.deleteTargetID = id
				m.err = nil
			}
		}
	}
	return m, nil
}

func (m *txnListModel) selectedID() string {
	if m.cursor >= 0 && m.cursor < len(m.txns) {
		return m.txns[m.cursor].ID
	}
	return ""
}

// delta is the transaction's effect on the listed wallet.
func (m *txnListModel) delta(t *ledger.Transaction) string {
	for _, leg := range t.Legs() {
		if leg.WalletID == m.wallet.ID {
			s := ledger.FormatAmount(leg.Delta, m.wallet.Currency)
			if leg.Delta.IsPositive() {
				s = "+" + s
			}
			return s
		}
	}
	return ""
}

func (m *txnListModel) view() string {
	if m.wallet == nil {
		return dimStyle.Render("Select a wallet on the Wallets tab to see its transactions.")
	}
	if m.loading {
		return "Loading transactions..."
	}
	if m.err != nil && len(m.txns) == 0 {
		return errorStyle.Render("Error: " + m.err.Error())
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Transactions: " + m.wallet.Name))
	b.WriteString("\n")

	if len(m.txns) == 0 {
		b.WriteString(dimStyle.Render("No transactions yet. Press 't' to record one."))
		return b.String()
	}

	header := fmt.Sprintf("  %-17s %-9s %15s %s", "DATE", "TYPE", "AMOUNT", "DESCRIPTION")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	maxRows := m.height - 4
	if maxRows < 1 {
		maxRows = 10
	}

	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}

	for i := start; i < len(m.txns) && i < start+maxRows; i++ {
		t := &m.txns[i]
		desc := clip(t.Description, 30)

		line := fmt.Sprintf("  %-17s %-9s %15s %s",
			t.Date.Format("2006-01-02 15:04"),
			t.Type,
			m.delta(t),
			desc,
		)
		switch {
		case i == m.cursor:
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		case strings.HasPrefix(m.delta(t), "+"):
			b.WriteString(incomeStyle.Render(line))
		default:
			b.WriteString(expenseStyle.Render(line))
		}
		b.WriteString("\n")
	}

	switch {
	case m.confirmDelete:
		b.WriteString("\n" + errorStyle.Render("  Delete this transaction and reverse its effect? (y/n)"))
	case m.err != nil:
		b.WriteString("\n" + errorStyle.Render("  Error: "+m.err.Error()))
	default:
		b.WriteString(fmt.Sprintf("\n  %d transactions  balance %s %s",
			len(m.txns), ledger.FormatAmount(m.wallet.Balance, m.wallet.Currency), m.wallet.Currency))
	}
	return b.String()
}
