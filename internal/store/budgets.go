package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/simonvc/pocketledger/internal/ledger"
)

const budgetColumns = `id, user_id, category_id, amount, spent_amount, start_date, end_date, version, created_at, modified_at`

type budgets struct{ q querier }

func (r budgets) Insert(ctx context.Context, b *ledger.Budget) error {
	if b.ID == "" {
		b.ID = uuid.Must(uuid.NewV7()).String()
	}
	stamp(&b.CreatedAt, &b.ModifiedAt)
	b.Version = 1

	_, err := r.q.ExecContext(ctx,
		`INSERT INTO budgets (`+budgetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.CategoryID, b.Amount, b.SpentAmount,
		b.StartDate.String(), b.EndDate.String(), b.Version,
		formatTime(b.CreatedAt), formatTime(b.ModifiedAt),
	)
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

func (r budgets) Get(ctx context.Context, id string) (*ledger.Budget, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id)
	b, err := scanBudget(row)
	if err != nil {
		return nil, notFound(err, ledger.ErrBudgetNotFound, id)
	}
	return b, nil
}

func (r budgets) Save(ctx context.Context, b *ledger.Budget) error {
	touch(&b.ModifiedAt)
	res, err := r.q.ExecContext(ctx,
		`UPDATE budgets SET category_id = ?, amount = ?, spent_amount = ?, start_date = ?, end_date = ?,
			version = version + 1, modified_at = ?
		 WHERE id = ? AND version = ?`,
		b.CategoryID, b.Amount, b.SpentAmount, b.StartDate.String(), b.EndDate.String(),
		formatTime(b.ModifiedAt), b.ID, b.Version,
	)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	if err := checkVersioned(ctx, r.q, res, "budgets", b.ID, b.Version, ledger.ErrBudgetNotFound); err != nil {
		return err
	}
	b.Version++
	return nil
}

func (r budgets) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.q, "budgets", id, ledger.ErrBudgetNotFound)
}

func (r budgets) ListByUser(ctx context.Context, userID string) ([]ledger.Budget, error) {
	return r.list(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = ? ORDER BY start_date, id`, userID)
}

func (r budgets) ListByUserAndCategory(ctx context.Context, userID, categoryID string) ([]ledger.Budget, error) {
	return r.list(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = ? AND category_id = ? ORDER BY start_date, id`,
		userID, categoryID)
}

func (r budgets) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	n, err := count(ctx, r.q, `SELECT COUNT(*) FROM budgets WHERE category_id = ?`, categoryID)
	if err != nil {
		return 0, fmt.Errorf("count budgets: %w", err)
	}
	return n, nil
}

func (r budgets) list(ctx context.Context, query string, args ...any) ([]ledger.Budget, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []ledger.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget row: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func scanBudget(row scanner) (*ledger.Budget, error) {
	var b ledger.Budget
	var start, end, createdAt, modifiedAt string
	err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount, &b.SpentAmount,
		&start, &end, &b.Version, &createdAt, &modifiedAt)
	if err != nil {
		return nil, err
	}
	if b.StartDate, err = parseDate(start); err != nil {
		return nil, err
	}
	if b.EndDate, err = parseDate(end); err != nil {
		return nil, err
	}
	b.CreatedAt = parseTime(createdAt)
	b.ModifiedAt = parseTime(modifiedAt)
	return &b, nil
}
