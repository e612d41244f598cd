package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/simonvc/pocketledger/internal/client"
)

type mode int

const (
	modeWalletList mode = iota
	modeTransactionList
	modeTransactionDetail
	modeBudgetList
	modeWalletForm
	modeTxnForm
)

var tabModes = []mode{modeWalletList, modeTransactionList, modeBudgetList}

func tabLabel(m mode) string {
	switch m {
	case modeWalletList:
		return "Wallets"
	case modeTransactionList:
		return "Transactions"
	case modeBudgetList:
		return "Budgets"
	default:
		return ""
	}
}

type App struct {
	client        *client.Client
	mode          mode
	tabIndex      int
	width, height int
	err           error
	statusMsg     string
	alert         string

	ctx    context.Context
	cancel context.CancelFunc
	alerts *alertFeed

	walletList walletListModel
	txnList    txnListModel
	txnDetail  txnDetailModel
	budgetList budgetListModel
	walletForm walletFormModel
	txnForm    txnFormModel
}

func NewApp(c *client.Client) *App {
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		client:   c,
		mode:     modeWalletList,
		tabIndex: 0,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (a *App) Init() tea.Cmd {
	a.alerts = startAlerts(a.ctx, a.client)
	return tea.Batch(
		a.walletList.init(a.client),
		a.budgetList.init(a.client),
		a.alerts.next(),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.walletList.width = msg.Width
		a.walletList.height = msg.Height - 6
		a.txnList.width = msg.Width
		a.txnList.height = msg.Height - 6
		a.budgetList.width = msg.Width
		a.budgetList.height = msg.Height - 6
		a.txnDetail.width = msg.Width
		a.walletForm.width = msg.Width
		a.txnForm.width = msg.Width
		return a, nil
	}

	// Loads complete asynchronously, often after the user has switched
	// tabs, so they are routed by type rather than by active mode.
	switch typedMsg := msg.(type) {
	case walletsLoadedMsg:
		var cmd tea.Cmd
		a.walletList, cmd = a.walletList.update(msg)
		return a, cmd
	case txnsLoadedMsg:
		var cmd tea.Cmd
		a.txnList, cmd = a.txnList.update(msg)
		return a, cmd
	case txnDetailLoadedMsg:
		var cmd tea.Cmd
		a.txnDetail, cmd = a.txnDetail.update(msg)
		return a, cmd
	case budgetsLoadedMsg:
		var cmd tea.Cmd
		a.budgetList, cmd = a.budgetList.update(msg)
		return a, cmd

	case walletDeleteConfirmedMsg:
		id := typedMsg.id
		return a, func() tea.Msg {
			err := a.client.DeleteWallet(context.Background(), id)
			return walletDeletedMsg{id: id, err: err}
		}
	case walletDeletedMsg:
		a.walletList, _ = a.walletList.update(msg)
		if typedMsg.err != nil {
			return a, nil
		}
		a.statusMsg = "Wallet deleted"
		return a, tea.Batch(
			a.walletList.init(a.client),
			a.budgetList.init(a.client),
		)

	case txnDeleteConfirmedMsg:
		id := typedMsg.id
		return a, func() tea.Msg {
			err := a.client.DeleteTransaction(context.Background(), id)
			return txnDeletedMsg{id: id, err: err}
		}
	case txnDeletedMsg:
		a.txnList, _ = a.txnList.update(msg)
		if typedMsg.err != nil {
			return a, nil
		}
		a.statusMsg = "Transaction deleted"
		return a, a.refreshAll()

	case budgetDeleteConfirmedMsg:
		id := typedMsg.id
		return a, func() tea.Msg {
			err := a.client.DeleteBudget(context.Background(), id)
			return budgetDeletedMsg{id: id, err: err}
		}
	case budgetDeletedMsg:
		a.budgetList, _ = a.budgetList.update(msg)
		if typedMsg.err != nil {
			return a, nil
		}
		a.statusMsg = "Budget deleted"
		return a, a.budgetList.init(a.client)

	case budgetsReconciledMsg:
		if typedMsg.err != nil {
			a.err = typedMsg.err
			return a, nil
		}
		a.err = nil
		a.statusMsg = "Reconciled budgets"
		return a, a.budgetList.init(a.client)

	case alertMsg:
		a.alert = describeAlert(typedMsg.sig)
		cmds := []tea.Cmd{a.budgetList.init(a.client)}
		if a.alerts != nil {
			cmds = append(cmds, a.alerts.next())
		}
		return a, tea.Batch(cmds...)
	case alertsClosedMsg:
		if typedMsg.err != nil {
			a.alert = "Alert stream closed: " + typedMsg.err.Error()
		}
		return a, nil
	}

	// Modal modes: delegate ALL message types (not just keys)
	if a.mode == modeWalletForm {
		var cmd tea.Cmd
		a.walletForm, cmd = a.walletForm.update(msg, a.client)
		if a.walletForm.done {
			a.mode = modeWalletList
			a.statusMsg = a.walletForm.statusMsg
			return a, a.walletList.init(a.client)
		}
		if a.walletForm.cancelled {
			a.mode = modeWalletList
			a.statusMsg = "Wallet creation cancelled"
		}
		return a, cmd
	}

	if a.mode == modeTxnForm {
		var cmd tea.Cmd
		a.txnForm, cmd = a.txnForm.update(msg, a.client)
		if a.txnForm.done {
			a.mode = modeTransactionList
			a.statusMsg = a.txnForm.statusMsg
			return a, a.refreshAll()
		}
		if a.txnForm.cancelled {
			a.mode = modeTransactionList
			a.statusMsg = "Transaction cancelled"
		}
		return a, cmd
	}

	// A pending delete confirmation owns the keyboard.
	switch {
	case a.mode == modeWalletList && a.walletList.confirmDelete:
		var cmd tea.Cmd
		a.walletList, cmd = a.walletList.update(msg)
		return a, cmd
	case a.mode == modeTransactionList && a.txnList.confirmDelete:
		var cmd tea.Cmd
		a.txnList, cmd = a.txnList.update(msg)
		return a, cmd
	case a.mode == modeBudgetList && a.budgetList.confirmDelete:
		var cmd tea.Cmd
		a.budgetList, cmd = a.budgetList.update(msg)
		return a, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			a.cancel()
			return a, tea.Quit

		case key.Matches(msg, keys.Tab):
			return a, a.switchTab((a.tabIndex + 1) % len(tabModes))

		case key.Matches(msg, keys.ShiftTab):
			return a, a.switchTab((a.tabIndex - 1 + len(tabModes)) % len(tabModes))

		case key.Matches(msg, keys.Escape):
			switch a.mode {
			case modeTransactionDetail:
				a.mode = modeTransactionList
			case modeTransactionList:
				return a, a.switchTab(0)
			}
			return a, nil

		case key.Matches(msg, keys.Refresh):
			return a, a.refreshAll()

		case key.Matches(msg, keys.New):
			if a.mode == modeWalletList {
				a.mode = modeWalletForm
				a.walletForm = newWalletForm()
				a.walletForm.width = a.width
				return a, nil
			}

		case key.Matches(msg, keys.NewTxn):
			if a.mode == modeWalletList || a.mode == modeTransactionList {
				w := a.walletList.selected()
				if a.mode == modeTransactionList {
					w = a.txnList.wallet
				}
				if w == nil {
					a.statusMsg = "Select a wallet first"
					return a, nil
				}
				a.tabIndex = 1
				a.mode = modeTxnForm
				a.txnForm = newTxnForm(*w)
				a.txnForm.width = a.width
				return a, a.txnForm.loadChoices(a.client)
			}

		case key.Matches(msg, keys.Reconcile):
			if a.mode == modeBudgetList {
				return a, reconcile(a.client)
			}

		case key.Matches(msg, keys.Enter):
			switch a.mode {
			case modeWalletList:
				if a.walletList.selected() != nil {
					return a, a.switchTab(1)
				}
				return a, nil
			case modeTransactionList:
				if txnID := a.txnList.selectedID(); txnID != "" {
					a.mode = modeTransactionDetail
					return a, a.txnDetail.init(a.client, txnID, a.txnList.wallet.Currency)
				}
				return a, nil
			}
		}
	}

	// Delegate update to active sub-model
	var cmd tea.Cmd
	switch a.mode {
	case modeWalletList:
		a.walletList, cmd = a.walletList.update(msg)
	case modeTransactionList:
		a.txnList, cmd = a.txnList.update(msg)
	case modeTransactionDetail:
		a.txnDetail, cmd = a.txnDetail.update(msg)
	case modeBudgetList:
		a.budgetList, cmd = a.budgetList.update(msg)
	}
	return a, cmd
}

func (a *App) switchTab(i int) tea.Cmd {
	a.tabIndex = i
	a.mode = tabModes[i]
	a.statusMsg = ""
	a.err = nil
	return a.refreshTab()
}

// loadSelectedWallet points the transaction list at a copy of the selected
// wallet so later wallet reloads do not alias it.
func (a *App) loadSelectedWallet() tea.Cmd {
	sel := a.walletList.selected()
	if sel == nil {
		return a.txnList.init(a.client, nil)
	}
	w := *sel
	return a.txnList.init(a.client, &w)
}

func (a *App) refreshTab() tea.Cmd {
	switch a.mode {
	case modeWalletList:
		return a.walletList.init(a.client)
	case modeTransactionList:
		return a.loadSelectedWallet()
	case modeBudgetList:
		return a.budgetList.init(a.client)
	}
	return nil
}

// refreshAll reloads every view a transaction change can affect.
func (a *App) refreshAll() tea.Cmd {
	cmds := []tea.Cmd{a.walletList.init(a.client), a.budgetList.init(a.client)}
	if a.txnList.wallet != nil {
		cmds = append(cmds, a.txnList.init(a.client, a.txnList.wallet))
	}
	return tea.Batch(cmds...)
}

func (a *App) View() string {
	// Tab bar
	tabs := ""
	for i, m := range tabModes {
		label := tabLabel(m)
		if i == a.tabIndex && a.mode != modeWalletForm && a.mode != modeTxnForm {
			tabs += activeTabStyle.Render(label)
		} else {
			tabs += inactiveTabStyle.Render(label)
		}
		if i < len(tabModes)-1 {
			tabs += " "
		}
	}

	// Content
	var content string
	switch a.mode {
	case modeWalletList:
		content = a.walletList.view()
	case modeTransactionList:
		content = a.txnList.view()
	case modeTransactionDetail:
		content = a.txnDetail.view()
	case modeBudgetList:
		content = a.budgetList.view()
	case modeWalletForm:
		content = a.walletForm.view()
	case modeTxnForm:
		content = a.txnForm.view()
	}

	// Status bar
	status := ""
	if a.statusMsg != "" {
		status = successStyle.Render(a.statusMsg)
	}
	if a.err != nil {
		status = errorStyle.Render(a.err.Error())
	}
	alert := ""
	if a.alert != "" {
		alert = warningStyle.Render("! " + a.alert)
	}

	helpText := dimStyle.Render("tab:switch  enter:select  esc:back  n:new wallet  t:new txn  d:delete  R:reconcile  r:refresh  q:quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		tabs,
		"",
		content,
		"",
		alert,
		status,
		helpText,
	)
}
