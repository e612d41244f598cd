package ledger

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestTransactionValidate(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		txn  Transaction
		want error
	}{
		{"ok expense", Transaction{Amount: d("10"), Type: Expense, Date: now, WalletID: "w1", CategoryID: "c1"}, nil},
		{"lower-case type", Transaction{Amount: d("10"), Type: "income", Date: now, WalletID: "w1"}, nil},
		{"zero amount", Transaction{Amount: d("0"), Type: Expense, Date: now, WalletID: "w1"}, ErrInvalidAmount},
		{"negative amount", Transaction{Amount: d("-1"), Type: Expense, Date: now, WalletID: "w1"}, ErrInvalidAmount},
		{"bad type", Transaction{Amount: d("1"), Type: "REFUND", Date: now, WalletID: "w1"}, ErrInvalidTransactionType},
		{"no date", Transaction{Amount: d("1"), Type: Income, WalletID: "w1"}, ErrMissingDate},
		{"no wallet", Transaction{Amount: d("1"), Type: Income, Date: now}, ErrMissingWallet},
		{"transfer without target", Transaction{Amount: d("1"), Type: Transfer, Date: now, WalletID: "w1"}, ErrMissingTargetWallet},
		{"self transfer", Transaction{Amount: d("1"), Type: Transfer, Date: now, WalletID: "w1", ToWalletID: "w1"}, ErrSelfTransfer},
		{"transfer with category", Transaction{Amount: d("1"), Type: Transfer, Date: now, WalletID: "w1", ToWalletID: "w2", CategoryID: "c"}, ErrTransferCategory},
		{"income with target", Transaction{Amount: d("1"), Type: Income, Date: now, WalletID: "w1", ToWalletID: "w2"}, ErrUnexpectedTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.txn.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestLegs(t *testing.T) {
	inc := Transaction{Type: Income, Amount: d("5"), WalletID: "a"}
	exp := Transaction{Type: Expense, Amount: d("5"), WalletID: "a"}
	xfer := Transaction{Type: Transfer, Amount: d("5"), WalletID: "a", ToWalletID: "b"}

	assert.Equal(t, "5", inc.Legs()[0].Delta.String())
	assert.Equal(t, "-5", exp.Legs()[0].Delta.String())

	legs := xfer.Legs()
	require.Len(t, legs, 2)
	assert.Equal(t, "a", legs[0].WalletID)
	assert.Equal(t, "b", legs[1].WalletID)
	assert.True(t, legs[0].Delta.Add(legs[1].Delta).IsZero(), "transfer legs must net to zero")
}

func TestWalletApply(t *testing.T) {
	w := Wallet{Balance: d("1000.00")}
	w.Apply(d("-150.00"))
	assert.True(t, d("850").Equal(w.Balance))
	w.Apply(d("150.00"))
	assert.True(t, d("1000").Equal(w.Balance))
}

func TestWalletValidate(t *testing.T) {
	w := Wallet{Name: "  Cash ", Type: WalletCash, Currency: "usd"}
	require.NoError(t, w.Validate())
	assert.Equal(t, "Cash", w.Name)
	assert.Equal(t, "USD", w.Currency)

	assert.ErrorIs(t, (&Wallet{Name: "x", Type: "PIGGY", Currency: "USD"}).Validate(), ErrInvalidWalletType)
	assert.ErrorIs(t, (&Wallet{Name: "x", Type: WalletCash, Currency: "XXX"}).Validate(), ErrInvalidCurrency)
	assert.ErrorIs(t, (&Wallet{Type: WalletCash, Currency: "USD"}).Validate(), ErrEmptyName)
}

func TestBudgetWindow(t *testing.T) {
	b := Budget{
		CategoryID: "food",
		Amount:     d("500"),
		StartDate:  civil.Date{Year: 2024, Month: 3, Day: 1},
		EndDate:    civil.Date{Year: 2024, Month: 3, Day: 31},
	}
	require.NoError(t, b.Validate())

	assert.True(t, b.ActiveOn(civil.Date{Year: 2024, Month: 3, Day: 1}), "start is inclusive")
	assert.True(t, b.ActiveOn(civil.Date{Year: 2024, Month: 3, Day: 31}), "end is inclusive")
	assert.False(t, b.ActiveOn(civil.Date{Year: 2024, Month: 4, Day: 1}))

	late := Transaction{Type: Expense, CategoryID: "food", Date: time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC)}
	assert.True(t, b.Matches(&late))
	other := Transaction{Type: Expense, CategoryID: "rent", Date: late.Date}
	assert.False(t, b.Matches(&other))
	income := Transaction{Type: Income, CategoryID: "food", Date: late.Date}
	assert.False(t, b.Matches(&income))

	assert.True(t, b.Overlaps(civil.Date{Year: 2024, Month: 2, Day: 1}, civil.Date{Year: 2024, Month: 3, Day: 1}))
	assert.False(t, b.Overlaps(civil.Date{Year: 2024, Month: 4, Day: 1}, civil.Date{Year: 2024, Month: 4, Day: 30}))
}

func TestBudgetValidateRange(t *testing.T) {
	b := Budget{
		CategoryID: "food",
		Amount:     d("500"),
		StartDate:  civil.Date{Year: 2024, Month: 3, Day: 31},
		EndDate:    civil.Date{Year: 2024, Month: 3, Day: 1},
	}
	err := b.Validate()
	assert.ErrorIs(t, err, ErrInvalidRange)

	b.StartDate, b.EndDate = b.EndDate, b.StartDate
	b.Amount = d("0")
	assert.ErrorIs(t, b.Validate(), ErrInvalidAmount)
}

func TestBudgetStatus(t *testing.T) {
	b := Budget{Amount: d("300"), SpentAmount: d("100")}
	s := b.Status()
	assert.True(t, d("200").Equal(s.Remaining))
	assert.True(t, d("33.33").Equal(s.PercentageUsed), "got %s", s.PercentageUsed)

	b = Budget{Amount: d("3"), SpentAmount: d("2")}
	assert.True(t, d("66.67").Equal(b.PercentageUsed()), "half-up rounding, got %s", b.PercentageUsed())
}

func TestThresholds(t *testing.T) {
	legacy := DefaultThresholds()
	ratio, err := ThresholdsFor(WarningModeRatio, d("0.8"))
	require.NoError(t, err)

	tests := []struct {
		spent      string
		wantLegacy Signal
		wantRatio  Signal
	}{
		{"300", SignalNone, SignalNone},
		{"400", SignalNone, SignalNone},
		{"401", SignalNone, SignalWarning},
		{"500", SignalNone, SignalWarning},
		{"501", SignalExceeded, SignalExceeded},
		{"650", SignalExceeded, SignalExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.spent, func(t *testing.T) {
			assert.Equal(t, tt.wantLegacy, legacy.Evaluate(d(tt.spent), d("500")))
			assert.Equal(t, tt.wantRatio, ratio.Evaluate(d(tt.spent), d("500")))
		})
	}

	_, err = ThresholdsFor("loud", decimal.Zero)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLegacyWarningNeverPrecedesExceeded(t *testing.T) {
	for _, spent := range []string{"0", "100", "499.99", "500", "624.99", "625", "626", "10000"} {
		s, l := d(spent), d("500")
		if LegacyWarning(s, l) {
			assert.True(t, s.GreaterThan(l), "legacy warning fired at %s without exceeding", spent)
		}
	}
}

func TestCategoryVisibility(t *testing.T) {
	global := Category{Name: "Food", Type: CategoryExpense}
	mine := Category{Name: "Hobby", Type: CategoryExpense, UserID: "u1"}
	assert.True(t, global.VisibleTo("u2"))
	assert.True(t, mine.VisibleTo("u1"))
	assert.False(t, mine.VisibleTo("u2"))

	c := Category{Name: "x", Type: "expense"}
	require.NoError(t, c.Validate())
	assert.Equal(t, CategoryExpense, c.Type)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "10.50", FormatAmount(d("10.5"), "USD"))
	assert.Equal(t, "1000", FormatAmount(d("1000"), "JPY"))
	assert.Equal(t, "1 XXX", FormatAmount(d("1"), "XXX"))

	_, err := ParseAmount("ten")
	assert.ErrorIs(t, err, ErrValidation)
}
