package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/simonvc/pocketledger/internal/ledger"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so lexicographic order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	writer *sql.DB
	reader *sql.DB
}

func Open(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", dbPath)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(runtime.NumCPU())

	s := &Store{writer: writer, reader: reader}

	if err := s.migrate(context.Background()); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	err1 := s.writer.Close()
	err2 := s.reader.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// Atomic runs fn inside a single writer transaction. Any error from fn rolls
// back every write made through the supplied repositories.
func (s *Store) Atomic(ctx context.Context, fn func(ledger.Repos) error) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := fn(repos{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Reader returns repositories backed by the read pool. Callers use it for
// queries only.
func (s *Store) Reader() ledger.Repos {
	return repos{q: s.reader}
}

// Ping checks both pools.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.writer.PingContext(ctx); err != nil {
		return fmt.Errorf("ping writer: %w", err)
	}
	if err := s.reader.PingContext(ctx); err != nil {
		return fmt.Errorf("ping reader: %w", err)
	}
	return nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

type repos struct {
	q querier
}

func (r repos) Users() ledger.UserRepository               { return users{r.q} }
func (r repos) Wallets() ledger.WalletRepository           { return wallets{r.q} }
func (r repos) Transactions() ledger.TransactionRepository { return transactions{r.q} }
func (r repos) Budgets() ledger.BudgetRepository           { return budgets{r.q} }
func (r repos) Categories() ledger.CategoryRepository      { return categories{r.q} }

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

func parseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func stamp(created, modified *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	if modified != nil && modified.IsZero() {
		*modified = *created
	}
}

// touch fills a zero modification time. Saves otherwise persist the
// caller's ModifiedAt unchanged.
func touch(modified *time.Time) {
	if modified.IsZero() {
		*modified = time.Now().UTC()
	}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFound(err error, sentinel error, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", sentinel, id)
	}
	return err
}

func count(ctx context.Context, q querier, query string, args ...any) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// checkVersioned turns a zero-row versioned UPDATE into ErrConflict, or
// ErrNotFound when the row is gone entirely.
func checkVersioned(ctx context.Context, q querier, res sql.Result, table, id string, version int64, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	exists, err := count(ctx, q, `SELECT COUNT(*) FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("check %s: %w", table, err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", missing, id)
	}
	return fmt.Errorf("%w: %s %s is no longer at version %d", ledger.ErrConflict, table, id, version)
}

func deleteByID(ctx context.Context, q querier, table, id string, missing error) error {
	res, err := q.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", missing, id)
	}
	return nil
}
