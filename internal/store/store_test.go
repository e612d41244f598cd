package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/simonvc/pocketledger/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedWallet(t *testing.T, s *Store) (*ledger.User, *ledger.Wallet) {
	t.Helper()
	ctx := context.Background()
	u := &ledger.User{Username: "alice"}
	w := &ledger.Wallet{Name: "Checking", Type: ledger.WalletBank, Currency: "USD", Balance: decimal.RequireFromString("100.00")}
	require.NoError(t, s.Atomic(ctx, func(r ledger.Repos) error {
		if err := r.Users().Insert(ctx, u); err != nil {
			return err
		}
		w.UserID = u.ID
		return r.Wallets().Insert(ctx, w)
	}))
	return u, w
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	cats, err := s2.Reader().Categories().ListVisible(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, cats, len(defaultCategories), "seed must run once")
}

func TestAtomicRollsBackOnError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, w := seedWallet(t, s)

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(r ledger.Repos) error {
		got, err := r.Wallets().Get(ctx, w.ID)
		if err != nil {
			return err
		}
		got.Credit(decimal.NewFromInt(50))
		if err := r.Wallets().Save(ctx, got); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Reader().Wallets().Get(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("100").Equal(got.Balance), "balance = %s", got.Balance)
	assert.EqualValues(t, 1, got.Version)
}

func TestWalletSaveDetectsStaleVersion(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, w := seedWallet(t, s)

	stale := *w
	require.NoError(t, s.Atomic(ctx, func(r ledger.Repos) error {
		w.Credit(decimal.NewFromInt(1))
		return r.Wallets().Save(ctx, w)
	}))
	assert.EqualValues(t, 2, w.Version)

	err := s.Atomic(ctx, func(r ledger.Repos) error {
		stale.Credit(decimal.NewFromInt(1))
		return r.Wallets().Save(ctx, &stale)
	})
	assert.ErrorIs(t, err, ledger.ErrConflict)

	missing := ledger.Wallet{ID: "nope", Version: 1}
	err = s.Atomic(ctx, func(r ledger.Repos) error { return r.Wallets().Save(ctx, &missing) })
	assert.ErrorIs(t, err, ledger.ErrWalletNotFound)
}

func TestDecimalRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u, _ := seedWallet(t, s)

	w := &ledger.Wallet{UserID: u.ID, Name: "Precise", Type: ledger.WalletCash, Currency: "USD",
		Balance: decimal.RequireFromString("12345678901234567890.123456789")}
	require.NoError(t, s.Atomic(ctx, func(r ledger.Repos) error { return r.Wallets().Insert(ctx, w) }))

	got, err := s.Reader().Wallets().Get(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(got.Balance), "got %s", got.Balance)
}

func TestTransactionDateRangeIsInclusive(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, w := seedWallet(t, s)

	day := func(d int) time.Time { return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC) }
	require.NoError(t, s.Atomic(ctx, func(r ledger.Repos) error {
		for _, d := range []int{1, 10, 20} {
			txn := &ledger.Transaction{Amount: decimal.NewFromInt(5), Type: ledger.Income, Date: day(d), WalletID: w.ID}
			if err := r.Transactions().Insert(ctx, txn); err != nil {
				return err
			}
		}
		return nil
	}))

	got, err := s.Reader().Transactions().ListByWalletAndDateRange(ctx, w.ID, day(1), day(10))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, day(10).Equal(got[0].Date), "newest first")

	n, err := s.Reader().Transactions().CountByWallet(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestTransferListedOnBothWallets(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u, src := seedWallet(t, s)

	dst := &ledger.Wallet{UserID: u.ID, Name: "Savings", Type: ledger.WalletSavings, Currency: "USD"}
	txn := &ledger.Transaction{Amount: decimal.NewFromInt(10), Type: ledger.Transfer,
		Date: time.Now(), WalletID: src.ID}
	require.NoError(t, s.Atomic(ctx, func(r ledger.Repos) error {
		if err := r.Wallets().Insert(ctx, dst); err != nil {
			return err
		}
		txn.ToWalletID = dst.ID
		return r.Transactions().Insert(ctx, txn)
	}))

	for _, id := range []string{src.ID, dst.ID} {
		got, err := s.Reader().Transactions().ListByWallet(ctx, id)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, dst.ID, got[0].ToWalletID)
	}
}

func TestTransferAcrossCurrenciesRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u, src := seedWallet(t, s)

	eur := &ledger.Wallet{UserID: u.ID, Name: "Euro", Type: ledger.WalletBank, Currency: "EUR"}
	err := s.Atomic(ctx, func(r ledger.Repos) error {
		if err := r.Wallets().Insert(ctx, eur); err != nil {
			return err
		}
		return r.Transactions().Insert(ctx, &ledger.Transaction{Amount: decimal.NewFromInt(1),
			Type: ledger.Transfer, Date: time.Now(), WalletID: src.ID, ToWalletID: eur.ID})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "share a currency")
}

func TestBudgetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u, _ := seedWallet(t, s)

	cats, err := s.Reader().Categories().ListVisible(ctx, u.ID)
	require.NoError(t, err)
	require.NotEmpty(t, cats)

	b := &ledger.Budget{UserID: u.ID, CategoryID: cats[0].ID, Amount: decimal.NewFromInt(500),
		StartDate: civil.Date{Year: 2024, Month: 3, Day: 1}, EndDate: civil.Date{Year: 2024, Month: 3, Day: 31}}
	require.NoError(t, s.Atomic(ctx, func(r ledger.Repos) error { return r.Budgets().Insert(ctx, b) }))

	got, err := s.Reader().Budgets().ListByUserAndCategory(ctx, u.ID, cats[0].ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.StartDate, got[0].StartDate)
	assert.Equal(t, b.EndDate, got[0].EndDate)
	assert.True(t, got[0].SpentAmount.IsZero())

	_, err = s.Reader().Budgets().Get(ctx, "missing")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestDuplicateUsername(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedWallet(t, s)

	err := s.Atomic(ctx, func(r ledger.Repos) error {
		return r.Users().Insert(ctx, &ledger.User{Username: "alice"})
	})
	assert.ErrorIs(t, err, ledger.ErrDuplicate)
}

func TestCategoryVisibility(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	alice, _ := seedWallet(t, s)

	bob := &ledger.User{Username: "bob"}
	mine := &ledger.Category{Name: "Hobbies", Type: ledger.CategoryExpense}
	require.NoError(t, s.Atomic(ctx, func(r ledger.Repos) error {
		if err := r.Users().Insert(ctx, bob); err != nil {
			return err
		}
		mine.UserID = alice.ID
		return r.Categories().Insert(ctx, mine)
	}))

	aliceCats, err := s.Reader().Categories().ListVisible(ctx, alice.ID)
	require.NoError(t, err)
	bobCats, err := s.Reader().Categories().ListVisible(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, aliceCats, len(bobCats)+1)
}
