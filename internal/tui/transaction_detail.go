package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/simonvc/pocketledger/internal/client"
	"github.com/simonvc/pocketledger/internal/ledger"
)

type txnDetailLoadedMsg struct {
	txn      *ledger.Transaction
	category *ledger.Category
	err      error
}

type txnDetailModel struct {
	txn      *ledger.Transaction
	category *ledger.Category
	currency string
	loading  bool
	err      error
	width    int
}

func (m *txnDetailModel) init(c *client.Client, id, currency string) tea.Cmd {
	m.loading = true
	m.currency = currency
	return func() tea.Msg {
		txn, err := c.GetTransaction(context.Background(), id)
		if err != nil {
			return txnDetailLoadedMsg{err: err}
		}
		var cat *ledger.Category
		if txn.CategoryID != "" {
			cat, _ = c.GetCategory(context.Background(), txn.CategoryID)
		}
		return txnDetailLoadedMsg{txn: txn, category: cat}
	}
}

func (m txnDetailModel) update(msg tea.Msg) (txnDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case txnDetailLoadedMsg:
		m.loading = false
		m.txn = msg.txn
		m.category = msg.category
		m.err = msg.err
	}
	return m, nil
}

func (m *txnDetailModel) view() string {
	if m.loading {
		return "Loading transaction..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if m.txn == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Transaction: %s", m.txn.ID)))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Type:"), m.txn.Type))
	b.WriteString(fmt.Sprintf("%s %s %s\n", labelStyle.Render("Amount:"), ledger.FormatAmount(m.txn.Amount, m.currency), m.currency))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Description:"), m.txn.Description))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Date:"), m.txn.Date.Format("2006-01-02 15:04:05")))
	if m.category != nil {
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Category:"), m.category.Name))
	}
	b.WriteString("\n")

	header := fmt.Sprintf("  %-38s %15s", "WALLET", "CHANGE")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for _, leg := range m.txn.Legs() {
		line := fmt.Sprintf("  %-38s %15s", leg.WalletID, ledger.FormatAmount(leg.Delta, m.currency))
		if leg.Delta.IsNegative() {
			b.WriteString(expenseStyle.Render(line))
		} else {
			b.WriteString(incomeStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + dimStyle.Render("  Press ESC to go back"))
	return b.String()
}
