package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/simonvc/pocketledger/internal/ledger"
)

const categoryColumns = `id, name, type, icon, color, user_id, created_at`

type categories struct{ q querier }

func (r categories) Insert(ctx context.Context, c *ledger.Category) error {
	if c.ID == "" {
		c.ID = uuid.Must(uuid.NewV7()).String()
	}
	stamp(&c.CreatedAt, nil)

	_, err := r.q.ExecContext(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, string(c.Type), c.Icon, c.Color, nullString(c.UserID), formatTime(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r categories) Get(ctx context.Context, id string) (*ledger.Category, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err != nil {
		return nil, notFound(err, ledger.ErrCategoryNotFound, id)
	}
	return c, nil
}

func (r categories) Save(ctx context.Context, c *ledger.Category) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE categories SET name = ?, type = ?, icon = ?, color = ? WHERE id = ?`,
		c.Name, string(c.Type), c.Icon, c.Color, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ledger.ErrCategoryNotFound, c.ID)
	}
	return nil
}

func (r categories) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.q, "categories", id, ledger.ErrCategoryNotFound)
}

func (r categories) ListVisible(ctx context.Context, userID string) ([]ledger.Category, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE user_id IS NULL OR user_id = ?
		 ORDER BY type, name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []ledger.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scanCategory(row scanner) (*ledger.Category, error) {
	var c ledger.Category
	var owner sql.NullString
	var createdAt string
	if err := row.Scan(&c.ID, &c.Name, &c.Type, &c.Icon, &c.Color, &owner, &createdAt); err != nil {
		return nil, err
	}
	c.UserID = owner.String
	c.CreatedAt = parseTime(createdAt)
	return &c, nil
}
