package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/simonvc/pocketledger/internal/client"
	"github.com/simonvc/pocketledger/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testWallets() []ledger.Wallet {
	return []ledger.Wallet{
		{ID: "w1", Name: "Cash", Type: ledger.WalletCash, Currency: "USD", Balance: decimal.NewFromInt(100)},
		{ID: "w2", Name: "Bank", Type: ledger.WalletBank, Currency: "USD", Balance: decimal.NewFromInt(-5)},
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	a := NewApp(client.New("http://127.0.0.1:0", "u1"))
	t.Cleanup(a.cancel)
	a.Update(walletsLoadedMsg{wallets: testWallets()})
	return a
}

func TestWalletListDeleteConfirm(t *testing.T) {
	var m walletListModel
	m, _ = m.update(walletsLoadedMsg{wallets: testWallets()})
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "w2", m.selectedID())

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "w2", m.selectedID(), "cursor stops at the last row")

	m, _ = m.update(runes("d"))
	require.True(t, m.confirmDelete)
	assert.Contains(t, m.view(), `Delete wallet "Bank"?`)

	m, cmd := m.update(runes("y"))
	require.NotNil(t, cmd)
	assert.False(t, m.confirmDelete)
	assert.Equal(t, walletDeleteConfirmedMsg{id: "w2"}, cmd())
}

func TestWalletListDeleteDeclined(t *testing.T) {
	var m walletListModel
	m, _ = m.update(walletsLoadedMsg{wallets: testWallets()})
	m, _ = m.update(runes("d"))
	m, cmd := m.update(runes("n"))
	assert.Nil(t, cmd)
	assert.False(t, m.confirmDelete)
	assert.Empty(t, m.deleteTargetID)
}

func TestAppRoutesLoadsToInactiveTabs(t *testing.T) {
	a := newTestApp(t)
	require.Equal(t, modeWalletList, a.mode)

	a.Update(budgetsLoadedMsg{
		budgets:    []ledger.BudgetStatus{(&ledger.Budget{ID: "b1", CategoryID: "c1", Amount: decimal.NewFromInt(10)}).Status()},
		categories: map[string]string{"c1": "Coffee"},
	})
	require.Len(t, a.budgetList.budgets, 1)
	assert.Equal(t, "Coffee", a.budgetList.categoryName("c1"))
	assert.Equal(t, modeWalletList, a.mode)
}

func TestEnterOpensWalletTransactions(t *testing.T) {
	a := newTestApp(t)
	a.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, modeTransactionList, a.mode)
	assert.Equal(t, 1, a.tabIndex)
	require.NotNil(t, a.txnList.wallet)
	assert.Equal(t, "w2", a.txnList.wallet.ID)

	// A reload of the wallet list must not change the wallet being shown.
	a.Update(walletsLoadedMsg{wallets: testWallets()[:1]})
	assert.Equal(t, "Bank", a.txnList.wallet.Name)

	a.Update(txnsLoadedMsg{walletID: "w1", txns: []ledger.Transaction{{ID: "stale"}}})
	assert.Empty(t, a.txnList.txns, "loads for another wallet are dropped")

	a.Update(txnsLoadedMsg{walletID: "w2", txns: []ledger.Transaction{{ID: "t1"}}})
	assert.Equal(t, "t1", a.txnList.selectedID())

	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeWalletList, a.mode)
}

func TestWalletFormFlow(t *testing.T) {
	a := newTestApp(t)
	a.Update(runes("n"))
	require.Equal(t, modeWalletForm, a.mode)

	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Error(t, a.walletForm.err)
	assert.Equal(t, walletStepName, a.walletForm.step)

	a.Update(runes("Travel"))
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.NoError(t, a.walletForm.err)
	assert.Equal(t, walletStepType, a.walletForm.step)

	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeWalletList, a.mode)
	assert.Equal(t, "Wallet creation cancelled", a.statusMsg)
}

func TestWalletFormCreated(t *testing.T) {
	a := newTestApp(t)
	a.Update(runes("n"))
	_, cmd := a.Update(walletCreatedMsg{wallet: &ledger.Wallet{Name: "Travel"}})
	require.NotNil(t, cmd)
	assert.Equal(t, modeWalletList, a.mode)
	assert.Equal(t, `Wallet "Travel" created`, a.statusMsg)
}

func TestNewTransactionNeedsWallet(t *testing.T) {
	a := NewApp(client.New("http://127.0.0.1:0", "u1"))
	t.Cleanup(a.cancel)
	a.Update(walletsLoadedMsg{})
	a.Update(runes("t"))
	assert.Equal(t, modeWalletList, a.mode)
	assert.Equal(t, "Select a wallet first", a.statusMsg)

	a = newTestApp(t)
	_, cmd := a.Update(runes("t"))
	require.NotNil(t, cmd)
	assert.Equal(t, modeTxnForm, a.mode)
	assert.Equal(t, "w1", a.txnForm.wallet.ID)
}

func TestTxnFormTargets(t *testing.T) {
	f := newTxnForm(testWallets()[0])
	f, _ = f.update(txnChoicesMsg{
		wallets: append(testWallets(), ledger.Wallet{ID: "w3", Currency: "EUR"}),
		categories: []ledger.Category{
			{ID: "c1", Type: ledger.CategoryExpense},
			{ID: "c2", Type: ledger.CategoryIncome},
		},
	}, nil)
	require.Len(t, f.targets, 1, "only other wallets in the same currency")
	assert.Equal(t, "w2", f.targets[0].ID)

	cats := f.matchingCategories()
	require.Len(t, cats, 1)
	assert.Equal(t, "c1", cats[0].ID)
}

func TestBudgetBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("█", 10)+strings.Repeat("░", 10), bar(decimal.NewFromInt(50)))
	assert.Equal(t, strings.Repeat("█", barWidth), bar(decimal.NewFromInt(150)))
	assert.Equal(t, strings.Repeat("░", barWidth), bar(decimal.Zero))
}

func TestReconcileFailureShown(t *testing.T) {
	a := newTestApp(t)
	a.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, modeBudgetList, a.mode)

	_, cmd := a.Update(runes("R"))
	require.NotNil(t, cmd)

	a.Update(budgetsReconciledMsg{err: errors.New("boom")})
	assert.Contains(t, a.View(), "boom")
}

func TestAlertBanner(t *testing.T) {
	a := newTestApp(t)
	b := ledger.Budget{ID: "b1", Amount: decimal.NewFromInt(10)}
	_, cmd := a.Update(alertMsg{sig: ledger.BudgetSignal{
		Kind: ledger.SignalExceeded, Budget: b, Spent: decimal.NewFromInt(12), Limit: decimal.NewFromInt(10),
	}})
	require.NotNil(t, cmd)
	assert.Contains(t, a.alert, "over its limit")
	assert.Contains(t, a.View(), "spent 12.00 of 10.00")
}

func TestClipCountsCells(t *testing.T) {
	assert.Equal(t, "Groceries", clip("Groceries", 24))
	assert.Equal(t, "Café ..", clip("Café au lait", 7))
	assert.Equal(t, "日本..", clip("日本語の財布", 6), "wide runes take two cells")
}
