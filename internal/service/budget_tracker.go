package service

import (
	"context"
	"slices"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simonvc/pocketledger/internal/ledger"
)

// BudgetTracker keeps Budget.SpentAmount in step with the transactions that
// match each budget and raises threshold signals.
type BudgetTracker struct {
	policy ledger.ThresholdPolicy
	log    zerolog.Logger
	now    func() time.Time
}

func NewBudgetTracker(policy ledger.ThresholdPolicy, log zerolog.Logger, now func() time.Time) *BudgetTracker {
	return &BudgetTracker{policy: policy, log: log, now: now}
}

// RecomputeSpent rescans the budget's category and overwrites SpentAmount
// with the sum of matching expenses on wallets owned by the budget's user.
func (t *BudgetTracker) RecomputeSpent(ctx context.Context, r ledger.Repos, b *ledger.Budget) error {
	txns, err := r.Transactions().ListByCategory(ctx, b.CategoryID)
	if err != nil {
		return err
	}

	owners := make(map[string]string)
	total := decimal.Zero
	for i := range txns {
		txn := &txns[i]
		if !b.Matches(txn) {
			continue
		}
		owner, ok := owners[txn.WalletID]
		if !ok {
			w, err := r.Wallets().Get(ctx, txn.WalletID)
			if err != nil {
				return err
			}
			owner = w.UserID
			owners[txn.WalletID] = owner
		}
		if owner == b.UserID {
			total = total.Add(txn.Amount)
		}
	}

	b.SpentAmount = total
	b.ModifiedAt = t.now().UTC()
	if err := r.Budgets().Save(ctx, b); err != nil {
		return err
	}
	t.log.Debug().Str("budget_id", b.ID).Str("spent", total.String()).Msg("budget recomputed")
	return nil
}

// CheckLimits adds amount to every budget of userID in categoryID that is
// active on at, then evaluates each new total.
func (t *BudgetTracker) CheckLimits(ctx context.Context, r ledger.Repos, userID, categoryID string, amount decimal.Decimal, at civil.Date) ([]ledger.BudgetSignal, error) {
	budgets, err := r.Budgets().ListByUserAndCategory(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	var signals []ledger.BudgetSignal
	for i := range budgets {
		b := &budgets[i]
		if !b.ActiveOn(at) {
			continue
		}
		b.SpentAmount = b.SpentAmount.Add(amount)
		b.ModifiedAt = t.now().UTC()
		if err := r.Budgets().Save(ctx, b); err != nil {
			return nil, err
		}
		if sig, ok := t.Evaluate(b); ok {
			signals = append(signals, sig)
		}
	}
	return signals, nil
}

// RecomputeCategories rescans every budget of userID in the given categories.
// Signals are evaluated only for budgets that trigger, if non-nil, counts toward.
func (t *BudgetTracker) RecomputeCategories(ctx context.Context, r ledger.Repos, userID string, categoryIDs []string, trigger *ledger.Transaction) ([]ledger.BudgetSignal, error) {
	var signals []ledger.BudgetSignal
	seen := make([]string, 0, len(categoryIDs))
	for _, cat := range categoryIDs {
		if cat == "" || slices.Contains(seen, cat) {
			continue
		}
		seen = append(seen, cat)

		budgets, err := r.Budgets().ListByUserAndCategory(ctx, userID, cat)
		if err != nil {
			return nil, err
		}
		for i := range budgets {
			b := &budgets[i]
			if err := t.RecomputeSpent(ctx, r, b); err != nil {
				return nil, err
			}
			if trigger == nil || !b.Matches(trigger) {
				continue
			}
			if sig, ok := t.Evaluate(b); ok {
				signals = append(signals, sig)
			}
		}
	}
	return signals, nil
}

// Evaluate applies the threshold policy to the budget's current total.
func (t *BudgetTracker) Evaluate(b *ledger.Budget) (ledger.BudgetSignal, bool) {
	kind := t.policy.Evaluate(b.SpentAmount, b.Amount)
	if kind == ledger.SignalNone {
		return ledger.BudgetSignal{}, false
	}
	return ledger.BudgetSignal{
		Kind:   kind,
		Budget: *b,
		Spent:  b.SpentAmount,
		Limit:  b.Amount,
		At:     t.now().UTC(),
	}, true
}
