package ledger

import (
	"context"
	"time"
)

type UserRepository interface {
	Get(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Insert(ctx context.Context, u *User) error
}

// WalletRepository persists wallets. Save is version-checked: it fails with
// ErrConflict when the stored version no longer matches w.Version, and bumps
// w.Version on success.
type WalletRepository interface {
	Get(ctx context.Context, id string) (*Wallet, error)
	ListByUser(ctx context.Context, userID string) ([]Wallet, error)
	Insert(ctx context.Context, w *Wallet) error
	Save(ctx context.Context, w *Wallet) error
	Delete(ctx context.Context, id string) error
}

type TransactionRepository interface {
	Get(ctx context.Context, id string) (*Transaction, error)
	Insert(ctx context.Context, t *Transaction) error
	Save(ctx context.Context, t *Transaction) error
	Delete(ctx context.Context, id string) error
	// ListByWallet includes transfers in which the wallet is the target.
	ListByWallet(ctx context.Context, walletID string) ([]Transaction, error)
	// ListByWalletAndDateRange is inclusive at both ends.
	ListByWalletAndDateRange(ctx context.Context, walletID string, start, end time.Time) ([]Transaction, error)
	ListByCategory(ctx context.Context, categoryID string) ([]Transaction, error)
	CountByWallet(ctx context.Context, walletID string) (int, error)
	CountByCategory(ctx context.Context, categoryID string) (int, error)
}

// BudgetRepository persists budgets; Save follows the same version rules as
// WalletRepository.Save.
type BudgetRepository interface {
	Get(ctx context.Context, id string) (*Budget, error)
	Insert(ctx context.Context, b *Budget) error
	Save(ctx context.Context, b *Budget) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]Budget, error)
	ListByUserAndCategory(ctx context.Context, userID, categoryID string) ([]Budget, error)
	CountByCategory(ctx context.Context, categoryID string) (int, error)
}

type CategoryRepository interface {
	Get(ctx context.Context, id string) (*Category, error)
	Insert(ctx context.Context, c *Category) error
	Save(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) error
	// ListVisible returns global categories plus those owned by userID.
	ListVisible(ctx context.Context, userID string) ([]Category, error)
}

// Repos bundles the repositories that share one unit of work.
type Repos interface {
	Users() UserRepository
	Wallets() WalletRepository
	Transactions() TransactionRepository
	Budgets() BudgetRepository
	Categories() CategoryRepository
}

// UnitOfWork runs fn atomically: every write made through the Repos passed
// to fn commits together or not at all. Reader returns repositories for
// queries outside any unit.
type UnitOfWork interface {
	Atomic(ctx context.Context, fn func(Repos) error) error
	Reader() Repos
}
