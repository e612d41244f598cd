package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Create schema version table
	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		if err := migrateV1(ctx, tx); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return tx.Commit()
}

func migrateV1(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			username   TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		)`,

		// Money columns are TEXT so decimals round-trip exactly.
		`CREATE TABLE IF NOT EXISTS wallets (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id),
			name        TEXT NOT NULL,
			type        TEXT NOT NULL CHECK (type IN ('CASH','BANK','CREDIT_CARD','SAVINGS')),
			balance     TEXT NOT NULL DEFAULT '0',
			currency    TEXT NOT NULL DEFAULT 'USD',
			version     INTEGER NOT NULL DEFAULT 1,
			created_at  TEXT NOT NULL,
			modified_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_wallets_user ON wallets(user_id)`,

		`CREATE TABLE IF NOT EXISTS categories (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			type       TEXT NOT NULL CHECK (type IN ('INCOME','EXPENSE')),
			icon       TEXT NOT NULL DEFAULT '',
			color      TEXT NOT NULL DEFAULT '',
			user_id    TEXT REFERENCES users(id),
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_categories_user ON categories(user_id)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id           TEXT PRIMARY KEY,
			amount       TEXT NOT NULL,
			type         TEXT NOT NULL CHECK (type IN ('INCOME','EXPENSE','TRANSFER')),
			description  TEXT NOT NULL DEFAULT '',
			occurred_at  TEXT NOT NULL,
			wallet_id    TEXT NOT NULL REFERENCES wallets(id),
			to_wallet_id TEXT REFERENCES wallets(id),
			category_id  TEXT REFERENCES categories(id),
			created_at   TEXT NOT NULL,
			modified_at  TEXT NOT NULL,
			CHECK ((type = 'TRANSFER') = (to_wallet_id IS NOT NULL))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_wallet ON transactions(wallet_id, occurred_at)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_to_wallet ON transactions(to_wallet_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category_id)`,

		`CREATE TABLE IF NOT EXISTS budgets (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL REFERENCES users(id),
			category_id  TEXT NOT NULL REFERENCES categories(id),
			amount       TEXT NOT NULL,
			spent_amount TEXT NOT NULL DEFAULT '0',
			start_date   TEXT NOT NULL,
			end_date     TEXT NOT NULL,
			version      INTEGER NOT NULL DEFAULT 1,
			created_at   TEXT NOT NULL,
			modified_at  TEXT NOT NULL,
			CHECK (end_date >= start_date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_budgets_user_category ON budgets(user_id, category_id)`,

		// Trigger: a transfer must stay within one currency
		`CREATE TRIGGER IF NOT EXISTS trg_transfer_currency_match
		BEFORE INSERT ON transactions
		WHEN NEW.to_wallet_id IS NOT NULL
			AND (SELECT currency FROM wallets WHERE id = NEW.wallet_id) !=
				(SELECT currency FROM wallets WHERE id = NEW.to_wallet_id)
		BEGIN
			SELECT RAISE(ABORT, 'transfer wallets must share a currency');
		END`,

		// Record schema version
		`INSERT INTO schema_version (version) VALUES (1)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}

	// Seed global categories
	now := formatTime(time.Now())
	for _, c := range defaultCategories {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, name, type, icon, color, user_id, created_at) VALUES (?, ?, ?, ?, ?, NULL, ?)`,
			uuid.Must(uuid.NewV7()).String(), c.name, c.typ, c.icon, c.color, now,
		)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.name, err)
		}
	}

	return nil
}

var defaultCategories = []struct {
	name, typ, icon, color string
}{
	{"Salary", "INCOME", "briefcase", "#2E7D32"},
	{"Other Income", "INCOME", "plus", "#66BB6A"},
	{"Food", "EXPENSE", "utensils", "#EF6C00"},
	{"Transport", "EXPENSE", "car", "#1565C0"},
	{"Housing", "EXPENSE", "home", "#6A1B9A"},
	{"Utilities", "EXPENSE", "bolt", "#F9A825"},
	{"Entertainment", "EXPENSE", "film", "#AD1457"},
	{"Health", "EXPENSE", "heart", "#C62828"},
}

func firstLine(stmt string) string {
	for i, r := range stmt {
		if r == '\n' {
			return stmt[:i]
		}
	}
	return stmt
}
