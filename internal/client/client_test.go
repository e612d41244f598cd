package client

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simonvc/pocketledger/internal/ledger"
	"github.com/simonvc/pocketledger/internal/notify"
	"github.com/simonvc/pocketledger/internal/server"
	"github.com/simonvc/pocketledger/internal/service"
	"github.com/simonvc/pocketledger/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*Client, *notify.Hub) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	hub := notify.NewHub(zerolog.Nop())
	svc := service.New(st, service.WithNotifier(hub))
	srv := httptest.NewServer(server.New(svc, hub, zerolog.Nop(), "").Handler())
	t.Cleanup(srv.Close)
	return New(srv.URL, ""), hub
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	anon, _ := newServer(t)
	require.NoError(t, anon.Ping(ctx))

	u, err := anon.CreateUser(ctx, "alice")
	require.NoError(t, err)
	c := anon.As(u.ID)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)

	w, err := c.CreateWallet(ctx, service.WalletInput{Name: "Cash", Currency: "usd", InitialBalance: d("100")})
	require.NoError(t, err)
	assert.Equal(t, ledger.WalletCash, w.Type)
	assert.Equal(t, "USD", w.Currency)

	cat, err := c.CreateCategory(ctx, service.CategoryInput{Name: "Coffee", Type: ledger.CategoryExpense})
	require.NoError(t, err)

	b, err := c.CreateBudget(ctx, service.BudgetInput{
		CategoryID: cat.ID, Amount: d("50"),
		StartDate: civil.Date{Year: 2024, Month: 3, Day: 1}, EndDate: civil.Date{Year: 2024, Month: 3, Day: 31},
	})
	require.NoError(t, err)

	at := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	txn, err := c.CreateTransaction(ctx, service.TransactionInput{
		Amount: d("4.50"), Type: ledger.Expense, Date: at, WalletID: w.ID, CategoryID: cat.ID,
	})
	require.NoError(t, err)

	w, err = c.GetWallet(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, d("95.50").Equal(w.Balance))

	b, err = c.GetBudget(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, d("4.50").Equal(b.SpentAmount))
	assert.True(t, d("9").Equal(b.PercentageUsed))

	txns, err := c.ListWalletTransactionsBetween(ctx, w.ID, at.Add(-time.Hour), at)
	require.NoError(t, err)
	assert.Len(t, txns, 1)

	_, err = c.UpdateTransaction(ctx, txn.ID, service.TransactionInput{
		Amount: d("10"), Type: ledger.Expense, Date: at, WalletID: w.ID, CategoryID: cat.ID,
	})
	require.NoError(t, err)
	w, err = c.GetWallet(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, d("90").Equal(w.Balance))

	active, err := c.ListActiveBudgets(ctx, civil.Date{Year: 2024, Month: 3, Day: 10})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.True(t, d("10").Equal(active[0].SpentAmount))

	require.NoError(t, c.DeleteTransaction(ctx, txn.ID))
	_, err = c.GetTransaction(ctx, txn.ID)
	assert.True(t, IsNotFound(err))
}

func TestClientErrors(t *testing.T) {
	ctx := context.Background()
	anon, _ := newServer(t)

	_, err := anon.ListWallets(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)

	_, err = anon.As("ghost").GetWallet(ctx, "nope")
	assert.True(t, IsNotFound(err))
}

func TestWatchAlerts(t *testing.T) {
	anon, hub := newServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	u, err := anon.CreateUser(ctx, "alice")
	require.NoError(t, err)
	c := anon.As(u.ID)
	w, err := c.CreateWallet(ctx, service.WalletInput{Name: "Cash", InitialBalance: d("100")})
	require.NoError(t, err)
	cat, err := c.CreateCategory(ctx, service.CategoryInput{Name: "Coffee", Type: ledger.CategoryExpense})
	require.NoError(t, err)
	_, err = c.CreateBudget(ctx, service.BudgetInput{
		CategoryID: cat.ID, Amount: d("10"),
		StartDate: civil.Date{Year: 2024, Month: 3, Day: 1}, EndDate: civil.Date{Year: 2024, Month: 3, Day: 31},
	})
	require.NoError(t, err)

	got := make(chan ledger.BudgetSignal, 1)
	watchCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- c.WatchAlerts(watchCtx, func(sig ledger.BudgetSignal) { got <- sig })
	}()
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	_, err = c.CreateTransaction(ctx, service.TransactionInput{
		Amount: d("12"), Type: ledger.Expense, Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		WalletID: w.ID, CategoryID: cat.ID,
	})
	require.NoError(t, err)

	select {
	case sig := <-got:
		assert.Equal(t, ledger.SignalExceeded, sig.Kind)
	case <-ctx.Done():
		t.Fatal("no alert received")
	}

	stop()
	assert.NoError(t, <-done)
}
