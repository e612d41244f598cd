package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/simonvc/pocketledger/internal/client"
	"github.com/simonvc/pocketledger/internal/ledger"
	"github.com/simonvc/pocketledger/internal/service"
)

type walletStep int

const (
	walletStepName walletStep = iota
	walletStepType
	walletStepCurrency
	walletStepBalance
	walletStepConfirm
)

var walletTypes = []ledger.WalletType{ledger.WalletCash, ledger.WalletBank, ledger.WalletCreditCard, ledger.WalletSavings}

type walletCreatedMsg struct {
	wallet *ledger.Wallet
	err    error
}

type walletFormModel struct {
	step       walletStep
	name       textinput.Model
	typeCursor int
	currency   int // index into curOptions
	curOptions []string
	balance    textinput.Model
	initial    decimal.Decimal

	err       error
	done      bool
	cancelled bool
	statusMsg string
	width     int
}

func newWalletForm() walletFormModel {
	nameInput := textinput.New()
	nameInput.Placeholder = "e.g. Checking"
	nameInput.CharLimit = 60
	nameInput.Focus()

	balInput := textinput.New()
	balInput.Placeholder = "0.00"
	balInput.CharLimit = 20

	m := walletFormModel{
		step:       walletStepName,
		name:       nameInput,
		balance:    balInput,
		curOptions: ledger.CurrencyCodes(),
	}
	for i, code := range m.curOptions {
		if code == "USD" {
			m.currency = i
		}
	}
	return m
}

func (m walletFormModel) stepProgress() string {
	return fmt.Sprintf("Step %d of %d", int(m.step)+1, int(walletStepConfirm)+1)
}

func (m walletFormModel) update(msg tea.Msg, c *client.Client) (walletFormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case walletCreatedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.step = walletStepConfirm
			return m, nil
		}
		m.done = true
		m.statusMsg = fmt.Sprintf("Wallet %q created", msg.wallet.Name)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Escape) {
			m.cancelled = true
			return m, nil
		}

		switch m.step {
		case walletStepName:
			return m.updateName(msg)
		case walletStepType:
			return m.updateType(msg)
		case walletStepCurrency:
			return m.updateCurrency(msg)
		case walletStepBalance:
			return m.updateBalance(msg)
		case walletStepConfirm:
			return m.updateConfirm(msg, c)
		}
	}
	return m, nil
}

func (m walletFormModel) updateName(msg tea.KeyMsg) (walletFormModel, tea.Cmd) {
	if key.Matches(msg, keys.Enter) {
		if strings.TrimSpace(m.name.Value()) == "" {
			m.err = fmt.Errorf("name is required")
			return m, nil
		}
		m.err = nil
		m.name.Blur()
		m.step = walletStepType
		return m, nil
	}
	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	return m, cmd
}

func (m walletFormModel) updateType(msg tea.KeyMsg) (walletFormModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.typeCursor > 0 {
			m.typeCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.typeCursor < len(walletTypes)-1 {
			m.typeCursor++
		}
	case key.Matches(msg, keys.Enter):
		m.step = walletStepCurrency
	}
	return m, nil
}

func (m walletFormModel) updateCurrency(msg tea.KeyMsg) (walletFormModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.currency > 0 {
			m.currency--
		}
	case key.Matches(msg, keys.Down):
		if m.currency < len(m.curOptions)-1 {
			m.currency++
		}
	case key.Matches(msg, keys.Enter):
		m.step = walletStepBalance
		m.balance.Focus()
	}
	return m, nil
}

func (m walletFormModel) updateBalance(msg tea.KeyMsg) (walletFormModel, tea.Cmd) {
	if key.Matches(msg, keys.Enter) {
		m.initial = decimal.Zero
		if v := strings.TrimSpace(m.balance.Value()); v != "" {
			amt, err := ledger.ParseAmount(v)
			if err != nil {
				m.err = err
				return m, nil
			}
			if amt.IsNegative() {
				m.err = fmt.Errorf("initial balance cannot be negative")
				return m, nil
			}
			m.initial = amt
		}
		m.err = nil
		m.balance.Blur()
		m.step = walletStepConfirm
		return m, nil
	}
	var cmd tea.Cmd
	m.balance, cmd = m.balance.Update(msg)
	return m, cmd
}

func (m walletFormModel) input() service.WalletInput {
	return service.WalletInput{
		Name:           strings.TrimSpace(m.name.Value()),
		Type:           walletTypes[m.typeCursor],
		Currency:       m.curOptions[m.currency],
		InitialBalance: m.initial,
	}
}

func (m walletFormModel) updateConfirm(msg tea.KeyMsg, c *client.Client) (walletFormModel, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		in := m.input()
		return m, func() tea.Msg {
			created, err := c.CreateWallet(context.Background(), in)
			return walletCreatedMsg{wallet: created, err: err}
		}
	case "n", "N":
		m.cancelled = true
	}
	return m, nil
}

func (m *walletFormModel) view() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("New Wallet"))
	b.WriteString("\n\n")

	b.WriteString(dimStyle.Render(m.stepProgress()))
	b.WriteString("\n\n")

	switch m.step {
	case walletStepName:
		b.WriteString("  Enter wallet name:\n\n")
		b.WriteString("  " + m.name.View() + "\n")

	case walletStepType:
		b.WriteString(fmt.Sprintf("  Name: %s\n", m.name.Value()))
		b.WriteString("  Select wallet type:\n\n")
		for i, t := range walletTypes {
			if i == m.typeCursor {
				b.WriteString(selectedStyle.Render("  > "+string(t)) + "\n")
			} else {
				b.WriteString(fmt.Sprintf("    %s\n", t))
			}
		}

	case walletStepCurrency:
		b.WriteString(fmt.Sprintf("  Name: %s | Type: %s\n", m.name.Value(), walletTypes[m.typeCursor]))
		b.WriteString("  Select currency:\n\n")

		start := m.currency - 3
		if start < 0 {
			start = 0
		}
		end := start + 7
		if end > len(m.curOptions) {
			end = len(m.curOptions)
		}

		for i := start; i < end; i++ {
			code := m.curOptions[i]
			cur := ledger.Currencies[code]
			label := fmt.Sprintf("%s - %s", code, cur.Name)
			if i == m.currency {
				b.WriteString(selectedStyle.Render("  > "+label) + "\n")
			} else {
				b.WriteString(fmt.Sprintf("    %s\n", label))
			}
		}

	case walletStepBalance:
		b.WriteString(fmt.Sprintf("  Enter opening balance in %s (blank for zero):\n\n", m.curOptions[m.currency]))
		b.WriteString("  " + m.balance.View() + "\n")

	case walletStepConfirm:
		in := m.input()
		var summary strings.Builder
		summary.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Name:"), in.Name))
		summary.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Type:"), in.Type))
		summary.WriteString(fmt.Sprintf("%s %s", labelStyle.Render("Balance:"),
			ledger.FormatAmount(in.InitialBalance, in.Currency)+" "+in.Currency))

		b.WriteString(boxStyle.Render(summary.String()))
		b.WriteString("\n\n")
		b.WriteString("  Create this wallet? (y/n)\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  Error: "+m.err.Error()) + "\n")
	}

	b.WriteString("\n" + dimStyle.Render("  ESC to cancel"))
	return b.String()
}
