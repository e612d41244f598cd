package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/simonvc/pocketledger/internal/ledger"
)

const txnColumns = `id, amount, type, description, occurred_at, wallet_id, to_wallet_id, category_id, created_at, modified_at`

type transactions struct{ q querier }

func (r transactions) Insert(ctx context.Context, t *ledger.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.Must(uuid.NewV7()).String()
	}
	stamp(&t.CreatedAt, &t.ModifiedAt)

	_, err := r.q.ExecContext(ctx,
		`INSERT INTO transactions (`+txnColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Amount, string(t.Type), t.Description, formatTime(t.Date),
		t.WalletID, nullString(t.ToWalletID), nullString(t.CategoryID),
		formatTime(t.CreatedAt), formatTime(t.ModifiedAt),
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r transactions) Get(ctx context.Context, id string) (*ledger.Transaction, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+txnColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, notFound(err, ledger.ErrTransactionNotFound, id)
	}
	return t, nil
}

func (r transactions) Save(ctx context.Context, t *ledger.Transaction) error {
	touch(&t.ModifiedAt)
	res, err := r.q.ExecContext(ctx,
		`UPDATE transactions SET amount = ?, type = ?, description = ?, occurred_at = ?,
			wallet_id = ?, to_wallet_id = ?, category_id = ?, modified_at = ?
		 WHERE id = ?`,
		t.Amount, string(t.Type), t.Description, formatTime(t.Date),
		t.WalletID, nullString(t.ToWalletID), nullString(t.CategoryID), formatTime(t.ModifiedAt),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ledger.ErrTransactionNotFound, t.ID)
	}
	return nil
}

func (r transactions) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.q, "transactions", id, ledger.ErrTransactionNotFound)
}

func (r transactions) ListByWallet(ctx context.Context, walletID string) ([]ledger.Transaction, error) {
	return r.list(ctx,
		`SELECT `+txnColumns+` FROM transactions
		 WHERE wallet_id = ? OR to_wallet_id = ?
		 ORDER BY occurred_at DESC, id DESC`,
		walletID, walletID)
}

func (r transactions) ListByWalletAndDateRange(ctx context.Context, walletID string, start, end time.Time) ([]ledger.Transaction, error) {
	return r.list(ctx,
		`SELECT `+txnColumns+` FROM transactions
		 WHERE (wallet_id = ? OR to_wallet_id = ?) AND occurred_at >= ? AND occurred_at <= ?
		 ORDER BY occurred_at DESC, id DESC`,
		walletID, walletID, formatTime(start), formatTime(end))
}

func (r transactions) ListByCategory(ctx context.Context, categoryID string) ([]ledger.Transaction, error) {
	return r.list(ctx,
		`SELECT `+txnColumns+` FROM transactions WHERE category_id = ? ORDER BY occurred_at, id`,
		categoryID)
}

func (r transactions) CountByWallet(ctx context.Context, walletID string) (int, error) {
	n, err := count(ctx, r.q, `SELECT COUNT(*) FROM transactions WHERE wallet_id = ? OR to_wallet_id = ?`, walletID, walletID)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func (r transactions) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	n, err := count(ctx, r.q, `SELECT COUNT(*) FROM transactions WHERE category_id = ?`, categoryID)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func (r transactions) list(ctx context.Context, query string, args ...any) ([]ledger.Transaction, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []ledger.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func scanTransaction(row scanner) (*ledger.Transaction, error) {
	var t ledger.Transaction
	var occurredAt, createdAt, modifiedAt string
	var toWallet, category sql.NullString
	err := row.Scan(&t.ID, &t.Amount, &t.Type, &t.Description, &occurredAt,
		&t.WalletID, &toWallet, &category, &createdAt, &modifiedAt)
	if err != nil {
		return nil, err
	}
	t.Date = parseTime(occurredAt)
	t.ToWalletID = toWallet.String
	t.CategoryID = category.String
	t.CreatedAt = parseTime(createdAt)
	t.ModifiedAt = parseTime(modifiedAt)
	return &t, nil
}
