package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/simonvc/pocketledger/internal/ledger"
)

type users struct{ q querier }

func (r users) Insert(ctx context.Context, u *ledger.User) error {
	if u.ID == "" {
		u.ID = uuid.Must(uuid.NewV7()).String()
	}
	stamp(&u.CreatedAt, nil)

	_, err := r.q.ExecContext(ctx,
		`INSERT INTO users (id, username, created_at) VALUES (?, ?, ?)`,
		u.ID, u.Username, formatTime(u.CreatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ledger.ErrUsernameTaken, u.Username)
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r users) Get(ctx context.Context, id string) (*ledger.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT id, username, created_at FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, ledger.ErrUserNotFound, id)
	}
	return u, nil
}

func (r users) GetByUsername(ctx context.Context, username string) (*ledger.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT id, username, created_at FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, ledger.ErrUserNotFound, username)
	}
	return u, nil
}

func scanUser(row scanner) (*ledger.User, error) {
	var u ledger.User
	var createdAt string
	if err := row.Scan(&u.ID, &u.Username, &createdAt); err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}
