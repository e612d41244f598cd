package service

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/simonvc/pocketledger/internal/ledger"
	"github.com/simonvc/pocketledger/internal/lock"
	"go.opentelemetry.io/otel/attribute"
)

type BudgetInput struct {
	CategoryID string          `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	StartDate  civil.Date      `json:"start_date"`
	EndDate    civil.Date      `json:"end_date"`
}

type Budgets struct{ *core }

func (s *Budgets) Create(ctx context.Context, actor string, in BudgetInput) (_ *ledger.Budget, err error) {
	ctx, span := s.start(ctx, "budgets.create",
		attribute.String("user.id", actor), attribute.String("category.id", in.CategoryID))
	defer func() { finish(span, err) }()

	b := &ledger.Budget{
		UserID:     actor,
		CategoryID: in.CategoryID,
		Amount:     in.Amount,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	err = s.mutate(ctx, []string{lock.BudgetsKey(actor)}, func(ctx context.Context, u *unit) error {
		if err := requireUser(ctx, u, actor); err != nil {
			return err
		}
		if _, err := visibleCategory(ctx, u, actor, b.CategoryID); err != nil {
			return err
		}
		b.CreatedAt = s.now().UTC()
		b.ModifiedAt = b.CreatedAt
		if err := u.Budgets().Insert(ctx, b); err != nil {
			return err
		}
		return s.tracker.RecomputeSpent(ctx, u, b)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("budget_id", b.ID).Str("spent", b.SpentAmount.String()).Msg("budget created")
	return b, nil
}

// Update replaces the budget's category, limit and window. SpentAmount is
// recomputed whenever the matching set can change.
func (s *Budgets) Update(ctx context.Context, actor, id string, in BudgetInput) (_ *ledger.Budget, err error) {
	ctx, span := s.start(ctx, "budgets.update",
		attribute.String("user.id", actor), attribute.String("budget.id", id))
	defer func() { finish(span, err) }()

	var b *ledger.Budget
	err = s.mutate(ctx, []string{lock.BudgetsKey(actor)}, func(ctx context.Context, u *unit) error {
		if err := requireUser(ctx, u, actor); err != nil {
			return err
		}
		var err error
		b, err = s.owned(ctx, u, actor, id)
		if err != nil {
			return err
		}

		rescan := b.CategoryID != in.CategoryID || b.StartDate != in.StartDate || b.EndDate != in.EndDate
		b.CategoryID = in.CategoryID
		b.Amount = in.Amount
		b.StartDate = in.StartDate
		b.EndDate = in.EndDate
		b.ModifiedAt = s.now().UTC()
		if err := b.Validate(); err != nil {
			return err
		}
		if _, err := visibleCategory(ctx, u, actor, b.CategoryID); err != nil {
			return err
		}

		if rescan {
			return s.tracker.RecomputeSpent(ctx, u, b)
		}
		return u.Budgets().Save(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Budgets) Delete(ctx context.Context, actor, id string) (err error) {
	ctx, span := s.start(ctx, "budgets.delete",
		attribute.String("user.id", actor), attribute.String("budget.id", id))
	defer func() { finish(span, err) }()

	return s.mutate(ctx, []string{lock.BudgetsKey(actor)}, func(ctx context.Context, u *unit) error {
		if err := requireUser(ctx, u, actor); err != nil {
			return err
		}
		if _, err := s.owned(ctx, u, actor, id); err != nil {
			return err
		}
		return u.Budgets().Delete(ctx, id)
	})
}

// Reconcile recomputes every budget the user owns and returns them.
func (s *Budgets) Reconcile(ctx context.Context, actor string) (_ []ledger.Budget, err error) {
	ctx, span := s.start(ctx, "budgets.reconcile", attribute.String("user.id", actor))
	defer func() { finish(span, err) }()

	var out []ledger.Budget
	err = s.mutate(ctx, []string{lock.BudgetsKey(actor)}, func(ctx context.Context, u *unit) error {
		if err := requireUser(ctx, u, actor); err != nil {
			return err
		}
		budgets, err := u.Budgets().ListByUser(ctx, actor)
		if err != nil {
			return err
		}
		for i := range budgets {
			before := budgets[i].SpentAmount
			if err := s.tracker.RecomputeSpent(ctx, u, &budgets[i]); err != nil {
				return err
			}
			if !before.Equal(budgets[i].SpentAmount) {
				s.log.Warn().Str("budget_id", budgets[i].ID).
					Str("stored", before.String()).Str("actual", budgets[i].SpentAmount.String()).
					Msg("budget drift repaired")
			}
		}
		out = budgets
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Budgets) Get(ctx context.Context, actor, id string) (*ledger.Budget, error) {
	r := s.uow.Reader()
	if err := requireUser(ctx, r, actor); err != nil {
		return nil, err
	}
	return s.owned(ctx, r, actor, id)
}

func (s *Budgets) List(ctx context.Context, actor string) ([]ledger.Budget, error) {
	return s.filter(ctx, actor, func(*ledger.Budget) bool { return true })
}

// ListActive returns budgets whose window contains at.
func (s *Budgets) ListActive(ctx context.Context, actor string, at civil.Date) ([]ledger.Budget, error) {
	return s.filter(ctx, actor, func(b *ledger.Budget) bool { return b.ActiveOn(at) })
}

func (s *Budgets) ListByCategory(ctx context.Context, actor, categoryID string) ([]ledger.Budget, error) {
	r := s.uow.Reader()
	if err := requireUser(ctx, r, actor); err != nil {
		return nil, err
	}
	return r.Budgets().ListByUserAndCategory(ctx, actor, categoryID)
}

// ListByDateRange returns budgets whose window overlaps [start, end].
func (s *Budgets) ListByDateRange(ctx context.Context, actor string, start, end civil.Date) ([]ledger.Budget, error) {
	if end.Before(start) {
		return nil, ledger.ErrQueryDateRange
	}
	return s.filter(ctx, actor, func(b *ledger.Budget) bool { return b.Overlaps(start, end) })
}

func (s *Budgets) filter(ctx context.Context, actor string, keep func(*ledger.Budget) bool) ([]ledger.Budget, error) {
	r := s.uow.Reader()
	if err := requireUser(ctx, r, actor); err != nil {
		return nil, err
	}
	all, err := r.Budgets().ListByUser(ctx, actor)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for i := range all {
		if keep(&all[i]) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (s *Budgets) owned(ctx context.Context, r ledger.Repos, actor, id string) (*ledger.Budget, error) {
	b, err := r.Budgets().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor {
		return nil, fmt.Errorf("%w: %s", ledger.ErrNotBudgetOwner, id)
	}
	return b, nil
}
