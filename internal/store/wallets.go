package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/simonvc/pocketledger/internal/ledger"
)

const walletColumns = `id, user_id, name, type, balance, currency, version, created_at, modified_at`

type wallets struct{ q querier }

func (r wallets) Insert(ctx context.Context, w *ledger.Wallet) error {
	if w.ID == "" {
		w.ID = uuid.Must(uuid.NewV7()).String()
	}
	stamp(&w.CreatedAt, &w.ModifiedAt)
	w.Version = 1

	_, err := r.q.ExecContext(ctx,
		`INSERT INTO wallets (`+walletColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.UserID, w.Name, string(w.Type), w.Balance, w.Currency, w.Version,
		formatTime(w.CreatedAt), formatTime(w.ModifiedAt),
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

func (r wallets) Get(ctx context.Context, id string) (*ledger.Wallet, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = ?`, id)
	w, err := scanWallet(row)
	if err != nil {
		return nil, notFound(err, ledger.ErrWalletNotFound, id)
	}
	return w, nil
}

func (r wallets) ListByUser(ctx context.Context, userID string) ([]ledger.Wallet, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var out []ledger.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func (r wallets) Save(ctx context.Context, w *ledger.Wallet) error {
	touch(&w.ModifiedAt)
	res, err := r.q.ExecContext(ctx,
		`UPDATE wallets SET name = ?, type = ?, balance = ?, currency = ?, version = version + 1, modified_at = ?
		 WHERE id = ? AND version = ?`,
		w.Name, string(w.Type), w.Balance, w.Currency, formatTime(w.ModifiedAt), w.ID, w.Version,
	)
	if err != nil {
		return fmt.Errorf("update wallet: %w", err)
	}
	if err := checkVersioned(ctx, r.q, res, "wallets", w.ID, w.Version, ledger.ErrWalletNotFound); err != nil {
		return err
	}
	w.Version++
	return nil
}

func (r wallets) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.q, "wallets", id, ledger.ErrWalletNotFound)
}

func scanWallet(row scanner) (*ledger.Wallet, error) {
	var w ledger.Wallet
	var createdAt, modifiedAt string
	err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.Type, &w.Balance, &w.Currency, &w.Version, &createdAt, &modifiedAt)
	if err != nil {
		return nil, err
	}
	w.CreatedAt = parseTime(createdAt)
	w.ModifiedAt = parseTime(modifiedAt)
	return &w, nil
}
