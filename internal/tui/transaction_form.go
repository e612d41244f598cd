package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/simonvc/pocketledger/internal/client"
	"github.com/simonvc/pocketledger/internal/ledger"
	"github.com/simonvc/pocketledger/internal/service"
)

type txnStep int

const (
	txnStepType txnStep = iota
	txnStepAmount
	txnStepCategory
	txnStepTarget
	txnStepDescription
	txnStepConfirm
)

var txnTypes = []ledger.TransactionType{ledger.Expense, ledger.Income, ledger.Transfer}

type txnChoicesMsg struct {
	categories []ledger.Category
	wallets    []ledger.Wallet
	err        error
}

type txnCreatedMsg struct {
	txn *ledger.Transaction
	err error
}

// txnFormModel records a transaction against a fixed source wallet.
type txnFormModel struct {
	step   txnStep
	wallet ledger.Wallet

	typeCursor  int
	amountInput textinput.Model
	amount      decimal.Decimal
	description textinput.Model

	categories []ledger.Category
	catCursor  int
	targets    []ledger.Wallet
	tgtCursor  int

	err       error
	done      bool
	cancelled bool
	statusMsg string
	width     int
}

func newTxnForm(w ledger.Wallet) txnFormModel {
	amtInput := textinput.New()
	amtInput.Placeholder = "e.g. 42.50"
	amtInput.CharLimit = 20

	descInput := textinput.New()
	descInput.Placeholder = "e.g. Weekly groceries"
	descInput.CharLimit = 100

	return txnFormModel{
		step:        txnStepType,
		wallet:      w,
		amountInput: amtInput,
		description: descInput,
	}
}

func (m *txnFormModel) loadChoices(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		cats, err := c.ListCategories(context.Background())
		if err != nil {
			return txnChoicesMsg{err: err}
		}
		wallets, err := c.ListWallets(context.Background())
		return txnChoicesMsg{categories: cats, wallets: wallets, err: err}
	}
}

func (m txnFormModel) txnType() ledger.TransactionType {
	return txnTypes[m.typeCursor]
}

// matchingCategories are the categories usable for the chosen type.
func (m txnFormModel) matchingCategories() []ledger.Category {
	want := ledger.CategoryExpense
	if m.txnType() == ledger.Income {
		want = ledger.CategoryIncome
	}
	var out []ledger.Category
	for _, c := range m.categories {
		if c.Type == want {
			out = append(out, c)
		}
	}
	return out
}

func (m txnFormModel) update(msg tea.Msg, c *client.Client) (txnFormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case txnChoicesMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.categories = msg.categories
		m.targets = m.targets[:0]
		for _, w := range msg.wallets {
			if w.ID != m.wallet.ID && w.Currency == m.wallet.Currency {
				m.targets = append(m.targets, w)
			}
		}
		return m, nil

	case txnCreatedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.step = txnStepConfirm
			return m, nil
		}
		m.done = true
		m.statusMsg = fmt.Sprintf("%s of %s recorded", strings.ToLower(string(msg.txn.Type)), ledger.FormatAmount(msg.txn.Amount, m.wallet.Currency))
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Escape) {
			m.cancelled = true
			return m, nil
		}

		switch m.step {
		case txnStepType:
			return m.updateType(msg)
		case txnStepAmount:
			return m.updateAmount(msg)
		case txnStepCategory:
			return m.updateCategory(msg)
		case txnStepTarget:
			return m.updateTarget(msg)
		case txnStepDescription:
			return m.updateDescription(msg)
		case txnStepConfirm:
			return m.updateConfirm(msg, c)
		}
	}
	return m, nil
}

func (m txnFormModel) updateType(msg tea.KeyMsg) (txnFormModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.typeCursor > 0 {
			m.typeCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.typeCursor < len(txnTypes)-1 {
			m.typeCursor++
		}
	case key.Matches(msg, keys.Enter):
		m.err = nil
		m.step = txnStepAmount
		m.amountInput.Focus()
	}
	return m, nil
}

func (m txnFormModel) updateAmount(msg tea.KeyMsg) (txnFormModel, tea.Cmd) {
	if key.Matches(msg, keys.Enter) {
		amt, err := ledger.ParseAmount(m.amountInput.Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		if !amt.IsPositive() {
			m.err = ledger.ErrInvalidAmount
			return m, nil
		}
		m.err = nil
		m.amount = amt
		m.amountInput.Blur()
		if m.txnType() == ledger.Transfer {
			m.step = txnStepTarget
		} else {
			m.step = txnStepCategory
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.amountInput, cmd = m.amountInput.Update(msg)
	return m, cmd
}

// updateCategory picks a category; the extra last row means "none".
func (m txnFormModel) updateCategory(msg tea.KeyMsg) (txnFormModel, tea.Cmd) {
	n := len(m.matchingCategories())
	switch {
	case key.Matches(msg, keys.Up):
		if m.catCursor > 0 {
			m.catCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.catCursor < n {
			m.catCursor++
		}
	case key.Matches(msg, keys.Enter):
		m.err = nil
		m.step = txnStepDescription
		m.description.Focus()
	}
	return m, nil
}

func (m txnFormModel) updateTarget(msg tea.KeyMsg) (txnFormModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.tgtCursor > 0 {
			m.tgtCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.tgtCursor < len(m.targets)-1 {
			m.tgtCursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(m.targets) == 0 {
			m.err = fmt.Errorf("no other %s wallet to transfer to", m.wallet.Currency)
			return m, nil
		}
		m.err = nil
		m.step = txnStepDescription
		m.description.Focus()
	}
	return m, nil
}

func (m txnFormModel) updateDescription(msg tea.KeyMsg) (txnFormModel, tea.Cmd) {
	if key.Matches(msg, keys.Enter) {
		m.err = nil
		m.description.Blur()
		m.step = txnStepConfirm
		return m, nil
	}
	var cmd tea.Cmd
	m.description, cmd = m.description.Update(msg)
	return m, cmd
}

func (m txnFormModel) input() service.TransactionInput {
	in := service.TransactionInput{
		Amount:      m.amount,
		Type:        m.txnType(),
		Description: m.description.Value(),
		Date:        time.Now().UTC(),
		WalletID:    m.wallet.ID,
	}
	if in.Type == ledger.Transfer {
		if m.tgtCursor < len(m.targets) {
			in.ToWalletID = m.targets[m.tgtCursor].ID
		}
		return in
	}
	if cats := m.matchingCategories(); m.catCursor < len(cats) {
		in.CategoryID = cats[m.catCursor].ID
	}
	return in
}

func (m txnFormModel) updateConfirm(msg tea.KeyMsg, c *client.Client) (txnFormModel, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		in := m.input()
		return m, func() tea.Msg {
			created, err := c.CreateTransaction(context.Background(), in)
			return txnCreatedMsg{txn: created, err: err}
		}
	case "n", "N":
		m.cancelled = true
	}
	return m, nil
}

func (m *txnFormModel) view() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("New Transaction: " + m.wallet.Name))
	b.WriteString("\n\n")

	switch m.step {
	case txnStepType:
		b.WriteString("  Select transaction type:\n\n")
		for i, t := range txnTypes {
			if i == m.typeCursor {
				b.WriteString(selectedStyle.Render("  > "+string(t)) + "\n")
			} else {
				b.WriteString(fmt.Sprintf("    %s\n", t))
			}
		}

	case txnStepAmount:
		b.WriteString(fmt.Sprintf("  Type: %s\n", m.txnType()))
		b.WriteString(fmt.Sprintf("  Enter amount in %s:\n\n", m.wallet.Currency))
		b.WriteString("  " + m.amountInput.View() + "\n")

	case txnStepCategory:
		b.WriteString(fmt.Sprintf("  Type: %s | Amount: %s\n", m.txnType(), m.amount))
		b.WriteString("  Select category:\n\n")
		cats := m.matchingCategories()
		for i := 0; i <= len(cats); i++ {
			label := "(no category)"
			if i < len(cats) {
				label = cats[i].Name
				if cats[i].IsGlobal() {
					label += dimStyle.Render(" (global)")
				}
			}
			if i == m.catCursor {
				b.WriteString(selectedStyle.Render("  > "+label) + "\n")
			} else {
				b.WriteString("    " + label + "\n")
			}
		}

	case txnStepTarget:
		b.WriteString(fmt.Sprintf("  Transfer %s %s from %s to:\n\n", m.amount, m.wallet.Currency, m.wallet.Name))
		if len(m.targets) == 0 {
			b.WriteString(dimStyle.Render("    No other wallet in "+m.wallet.Currency) + "\n")
		}
		for i, w := range m.targets {
			label := fmt.Sprintf("%s (%s)", w.Name, w.Type)
			if i == m.tgtCursor {
				b.WriteString(selectedStyle.Render("  > "+label) + "\n")
			} else {
				b.WriteString("    " + label + "\n")
			}
		}

	case txnStepDescription:
		b.WriteString("  Enter a description (optional):\n\n")
		b.WriteString("  " + m.description.View() + "\n")

	case txnStepConfirm:
		b.WriteString("  Review transaction:\n\n")

		in := m.input()
		var summary strings.Builder
		summary.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Type:"), in.Type))
		summary.WriteString(fmt.Sprintf("%s %s %s\n", labelStyle.Render("Amount:"), ledger.FormatAmount(in.Amount, m.wallet.Currency), m.wallet.Currency))
		summary.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("From:"), m.wallet.Name))
		if in.ToWalletID != "" {
			summary.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("To:"), m.targets[m.tgtCursor].Name))
		}
		if cats := m.matchingCategories(); in.CategoryID != "" {
			summary.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Category:"), cats[m.catCursor].Name))
		}
		summary.WriteString(fmt.Sprintf("%s %s", labelStyle.Render("Description:"), in.Description))

		b.WriteString(boxStyle.Render(summary.String()))
		b.WriteString("\n\n")
		b.WriteString("  Record this transaction? (y/n)\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  Error: "+m.err.Error()) + "\n")
	}

	b.WriteString("\n" + dimStyle.Render("  ESC to cancel"))
	return b.String()
}
