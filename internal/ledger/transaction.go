package ledger

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	Income   TransactionType = "INCOME"
	Expense  TransactionType = "EXPENSE"
	Transfer TransactionType = "TRANSFER"
)

func ValidTransactionType(t TransactionType) bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

// Transaction is a single money movement. Transfers carry both legs in one
// record: WalletID is debited and ToWalletID is credited.
type Transaction struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	WalletID    string          `json:"wallet_id"`
	ToWalletID  string          `json:"to_wallet_id,omitempty"`
	CategoryID  string          `json:"category_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	ModifiedAt  time.Time       `json:"modified_at"`
}

func (t *Transaction) Validate() error {
	t.Type = TransactionType(strings.ToUpper(string(t.Type)))
	if !ValidTransactionType(t.Type) {
		return fmt.Errorf("%w: %q", ErrInvalidTransactionType, t.Type)
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	if t.WalletID == "" {
		return ErrMissingWallet
	}
	switch t.Type {
	case Transfer:
		if t.ToWalletID == "" {
			return ErrMissingTargetWallet
		}
		if t.ToWalletID == t.WalletID {
			return ErrSelfTransfer
		}
		if t.CategoryID != "" {
			return ErrTransferCategory
		}
	default:
		if t.ToWalletID != "" {
			return ErrUnexpectedTarget
		}
	}
	return nil
}

// Leg is the signed balance change a transaction makes to one wallet.
type Leg struct {
	WalletID string
	Delta    decimal.Decimal
}

// Legs returns the wallet effects of the transaction in application order.
func (t *Transaction) Legs() []Leg {
	switch t.Type {
	case Income:
		return []Leg{{WalletID: t.WalletID, Delta: t.Amount}}
	case Expense:
		return []Leg{{WalletID: t.WalletID, Delta: t.Amount.Neg()}}
	case Transfer:
		return []Leg{
			{WalletID: t.WalletID, Delta: t.Amount.Neg()},
			{WalletID: t.ToWalletID, Delta: t.Amount},
		}
	}
	return nil
}

// WalletIDs lists every wallet the transaction touches.
func (t *Transaction) WalletIDs() []string {
	if t.ToWalletID != "" {
		return []string{t.WalletID, t.ToWalletID}
	}
	return []string{t.WalletID}
}

// CountsTowardBudgets reports whether the transaction can contribute to a
// budget's spent amount.
func (t *Transaction) CountsTowardBudgets() bool {
	return t.Type == Expense && t.CategoryID != ""
}

// Day is the calendar date used for budget window matching.
func (t *Transaction) Day() civil.Date {
	return civil.DateOf(t.Date.UTC())
}
