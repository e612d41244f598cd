package ledger

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Budget is a spending limit for one category over an inclusive date window.
// SpentAmount is derived from matching expenses and must equal their sum
// whenever no unit of work is in flight.
type Budget struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	CategoryID  string          `json:"category_id"`
	Amount      decimal.Decimal `json:"amount"`
	SpentAmount decimal.Decimal `json:"spent_amount"`
	StartDate   civil.Date      `json:"start_date"`
	EndDate     civil.Date      `json:"end_date"`
	Version     int64           `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	ModifiedAt  time.Time       `json:"modified_at"`
}

func (b *Budget) Validate() error {
	if b.CategoryID == "" {
		return ErrMissingCategory
	}
	if !b.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !b.StartDate.IsValid() || !b.EndDate.IsValid() {
		return ErrMissingDate
	}
	if b.EndDate.Before(b.StartDate) {
		return ErrBudgetDateRange
	}
	return nil
}

// ActiveOn reports whether d falls inside the budget window, both ends inclusive.
func (b *Budget) ActiveOn(d civil.Date) bool {
	return !d.Before(b.StartDate) && !d.After(b.EndDate)
}

// Overlaps reports whether the budget window intersects [start, end].
func (b *Budget) Overlaps(start, end civil.Date) bool {
	return !b.EndDate.Before(start) && !b.StartDate.After(end)
}

// Matches reports whether t counts toward this budget, ignoring wallet
// ownership which the caller resolves.
func (b *Budget) Matches(t *Transaction) bool {
	return t.CountsTowardBudgets() && t.CategoryID == b.CategoryID && b.ActiveOn(t.Day())
}

func (b *Budget) Remaining() decimal.Decimal {
	return b.Amount.Sub(b.SpentAmount)
}

// PercentageUsed is spent/amount rounded half-up to four places, times 100.
func (b *Budget) PercentageUsed() decimal.Decimal {
	if b.Amount.IsZero() {
		return decimal.Zero
	}
	return b.SpentAmount.DivRound(b.Amount, 4).Mul(hundred)
}

// BudgetStatus is a budget together with its derived figures.
type BudgetStatus struct {
	Budget
	Remaining      decimal.Decimal `json:"remaining"`
	PercentageUsed decimal.Decimal `json:"percentage_used"`
}

func (b Budget) Status() BudgetStatus {
	return BudgetStatus{
		Budget:         b,
		Remaining:      b.Remaining(),
		PercentageUsed: b.PercentageUsed(),
	}
}
