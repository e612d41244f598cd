package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type WalletType string

const (
	WalletCash       WalletType = "CASH"
	WalletBank       WalletType = "BANK"
	WalletCreditCard WalletType = "CREDIT_CARD"
	WalletSavings    WalletType = "SAVINGS"
)

func ValidWalletType(t WalletType) bool {
	switch t {
	case WalletCash, WalletBank, WalletCreditCard, WalletSavings:
		return true
	}
	return false
}

// Wallet is a user-owned store of value. Balance changes only through the
// transaction ledger; handlers and CLI code treat it as read-only.
type Wallet struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Name       string          `json:"name"`
	Type       WalletType      `json:"type"`
	Balance    decimal.Decimal `json:"balance"`
	Currency   string          `json:"currency"`
	Version    int64           `json:"version"`
	CreatedAt  time.Time       `json:"created_at"`
	ModifiedAt time.Time       `json:"modified_at"`
}

func (w *Wallet) Validate() error {
	w.Name = strings.TrimSpace(w.Name)
	if w.Name == "" {
		return ErrEmptyName
	}
	if !ValidWalletType(w.Type) {
		return fmt.Errorf("%w: %q", ErrInvalidWalletType, w.Type)
	}
	cur, err := NormalizeCurrency(w.Currency)
	if err != nil {
		return err
	}
	w.Currency = cur
	return nil
}

func (w *Wallet) Credit(amount decimal.Decimal) { w.Balance = w.Balance.Add(amount) }

func (w *Wallet) Debit(amount decimal.Decimal) { w.Balance = w.Balance.Sub(amount) }

// Apply adds a signed delta: positive credits, negative debits.
func (w *Wallet) Apply(delta decimal.Decimal) {
	if delta.IsNegative() {
		w.Debit(delta.Neg())
		return
	}
	w.Credit(delta)
}

func (w *Wallet) OwnedBy(userID string) bool { return w.UserID == userID }
