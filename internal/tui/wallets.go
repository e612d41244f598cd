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

type walletsLoadedMsg struct {
	wallets []ledger.Wallet
	err     error
}

// walletDeleteConfirmedMsg is sent when the user confirms deletion in the TUI.
type walletDeleteConfirmedMsg struct {
	id string
}

// walletDeletedMsg is sent after the server processes the delete.
type walletDeletedMsg struct {
	id  string
	err error
}

type walletListModel struct {
	wallets        []ledger.Wallet
	cursor         int
	loading        bool
	err            error
	width          int
	height         int
	confirmDelete  bool
	deleteTargetID string
}

func (m *walletListModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		wallets, err := c.ListWallets(context.Background())
		return walletsLoadedMsg{wallets: wallets, err: err}
	}
}

func (m walletListModel) update(msg tea.Msg) (walletListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case walletsLoadedMsg:
		m.loading = false
		m.wallets = msg.wallets
		m.err = msg.err
		if m.cursor >= len(m.wallets) {
			m.cursor = max(len(m.wallets)-1, 0)
		}

	case walletDeletedMsg:
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
					return walletDeleteConfirmedMsg{id: id}
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
			if m.cursor < len(m.wallets)-1 {
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

func (m *walletListModel) selected() *ledger.Wallet {
	if m.cursor >= 0 && m.cursor < len(m.wallets) {
		return &m.wallets[m.cursor]
	}
	return nil
}

func (m *walletListModel) selectedID() string {
	if w := m.selected(); w != nil {
		return w.ID
	}
	return ""
}

func (m *walletListModel) view() string {
	if m.loading {
		return "Loading wallets..."
	}
	if m.err != nil && len(m.wallets) == 0 {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if len(m.wallets) == 0 {
		return dimStyle.Render("No wallets found. Press 'n' to create one.")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Wallets"))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-24s %-12s %18s %s", "NAME", "TYPE", "BALANCE", "CCY")
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

	for i := start; i < len(m.wallets) && i < start+maxRows; i++ {
		w := m.wallets[i]
		name := clip(w.Name, 24)

		line := fmt.Sprintf("  %-24s %-12s %18s %s", name, w.Type, ledger.FormatAmount(w.Balance, w.Currency), w.Currency)
		switch {
		case i == m.cursor:
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		case w.Balance.IsNegative():
			b.WriteString(expenseStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	switch {
	case m.confirmDelete:
		b.WriteString("\n" + errorStyle.Render(fmt.Sprintf("  Delete wallet %q? (y/n)", m.selected().Name)))
	case m.err != nil:
		b.WriteString("\n" + errorStyle.Render("  Error: "+m.err.Error()))
	default:
		b.WriteString(fmt.Sprintf("\n  %d wallets", len(m.wallets)))
	}

	return b.String()
}
