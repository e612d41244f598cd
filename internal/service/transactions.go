package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/pocketledger/internal/ledger"
	"github.com/simonvc/pocketledger/internal/lock"
	"go.opentelemetry.io/otel/attribute"
)

type TransactionInput struct {
	Amount      decimal.Decimal        `json:"amount"`
	Type        ledger.TransactionType `json:"type"`
	Description string                 `json:"description"`
	Date        time.Time              `json:"date"`
	WalletID    string                 `json:"wallet_id"`
	ToWalletID  string                 `json:"to_wallet_id,omitempty"`
	CategoryID  string                 `json:"category_id,omitempty"`
}

func (in TransactionInput) transaction() *ledger.Transaction {
	return &ledger.Transaction{
		Amount:      in.Amount,
		Type:        in.Type,
		Description: in.Description,
		Date:        in.Date,
		WalletID:    in.WalletID,
		ToWalletID:  in.ToWalletID,
		CategoryID:  in.CategoryID,
	}
}

type Transactions struct{ *core }

func (s *Transactions) Create(ctx context.Context, actor string, in TransactionInput) (_ *ledger.Transaction, err error) {
	ctx, span := s.start(ctx, "transactions.create",
		attribute.String("user.id", actor), attribute.String("wallet.id", in.WalletID))
	defer func() { finish(span, err) }()

	txn := in.transaction()
	if err := txn.Validate(); err != nil {
		return nil, err
	}

	keys := append(walletKeys(txn), lock.BudgetsKey(actor))
	err = s.mutate(ctx, keys, func(ctx context.Context, u *unit) error {
		if err := requireUser(ctx, u, actor); err != nil {
			return err
		}
		if err := s.resolve(ctx, u, actor, txn); err != nil {
			return err
		}
		txn.CreatedAt = s.now().UTC()
		txn.ModifiedAt = txn.CreatedAt
		if err := u.Transactions().Insert(ctx, txn); err != nil {
			return err
		}
		if err := s.ledger.ApplyEffect(ctx, u, txn); err != nil {
			return err
		}
		if !txn.CountsTowardBudgets() {
			return nil
		}
		sigs, err := s.tracker.CheckLimits(ctx, u, actor, txn.CategoryID, txn.Amount, txn.Day())
		if err != nil {
			return err
		}
		u.raise(sigs...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("transaction_id", txn.ID).Str("type", string(txn.Type)).
		Str("amount", txn.Amount.String()).Msg("transaction created")
	return txn, nil
}

// Update replaces every field of the transaction. The old effect is reversed
// and the new one applied inside the same unit, so balances never observe a
// half-edited transaction.
func (s *Transactions) Update(ctx context.Context, actor, id string, in TransactionInput) (_ *ledger.Transaction, err error) {
	ctx, span := s.start(ctx, "transactions.update",
		attribute.String("user.id", actor), attribute.String("transaction.id", id))
	defer func() { finish(span, err) }()

	next := in.transaction()
	next.ID = id
	if err := next.Validate(); err != nil {
		return nil, err
	}

	// Lock keys need the stored wallets; they are re-checked under lock.
	prior, err := s.uow.Reader().Transactions().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	keys := append(walletKeys(prior, next), lock.BudgetsKey(actor))

	err = s.mutate(ctx, keys, func(ctx context.Context, u *unit) error {
		if err := requireUser(ctx, u, actor); err != nil {
			return err
		}
		old, err := s.owned(ctx, u, actor, id)
		if err != nil {
			return err
		}
		if !covered(keys, old) {
			return fmt.Errorf("%w: transaction %s changed wallets while waiting for locks", ledger.ErrConflict, id)
		}

		if err := s.ledger.ReverseEffect(ctx, u, old); err != nil {
			return err
		}
		if err := s.resolve(ctx, u, actor, next); err != nil {
			return err
		}
		next.CreatedAt = old.CreatedAt
		next.ModifiedAt = s.now().UTC()
		if err := s.ledger.ApplyEffect(ctx, u, next); err != nil {
			return err
		}
		if err := u.Transactions().Save(ctx, next); err != nil {
			return err
		}

		var trigger *ledger.Transaction
		if next.CountsTowardBudgets() {
			trigger = next
		}
		sigs, err := s.tracker.RecomputeCategories(ctx, u, actor,
			[]string{old.CategoryID, next.CategoryID}, trigger)
		if err != nil {
			return err
		}
		u.raise(sigs...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("transaction_id", id).Msg("transaction updated")
	return next, nil
}

func (s *Transactions) Delete(ctx context.Context, actor, id string) (err error) {
	ctx, span := s.start(ctx, "transactions.delete",
		attribute.String("user.id", actor), attribute.String("transaction.id", id))
	defer func() { finish(span, err) }()

	prior, err := s.uow.Reader().Transactions().Get(ctx, id)
	if err != nil {
		return err
	}
	keys := append(walletKeys(prior), lock.BudgetsKey(actor))

	err = s.mutate(ctx, keys, func(ctx context.Context, u *unit) error {
		if err := requireUser(ctx, u, actor); err != nil {
			return err
		}
		old, err := s.owned(ctx, u, actor, id)
		if err != nil {
			return err
		}
		if !covered(keys, old) {
			return fmt.Errorf("%w: transaction %s changed wallets while waiting for locks", ledger.ErrConflict, id)
		}
		if err := s.ledger.ReverseEffect(ctx, u, old); err != nil {
			return err
		}
		if err := u.Transactions().Delete(ctx, id); err != nil {
			return err
		}
		_, err = s.tracker.RecomputeCategories(ctx, u, actor, []string{old.CategoryID}, nil)
		return err
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("transaction_id", id).Msg("transaction deleted")
	return nil
}

func (s *Transactions) Get(ctx context.Context, actor, id string) (*ledger.Transaction, error) {
	r := s.uow.Reader()
	if err := requireUser(ctx, r, actor); err != nil {
		return nil, err
	}
	return s.owned(ctx, r, actor, id)
}

func (s *Transactions) ListByWallet(ctx context.Context, actor, walletID string) ([]ledger.Transaction, error) {
	r := s.uow.Reader()
	if err := requireUser(ctx, r, actor); err != nil {
		return nil, err
	}
	if _, err := ownedWallet(ctx, r, actor, walletID); err != nil {
		return nil, err
	}
	return r.Transactions().ListByWallet(ctx, walletID)
}

// ListByWalletAndDateRange returns the wallet's transactions dated within
// [start, end], both inclusive.
func (s *Transactions) ListByWalletAndDateRange(ctx context.Context, actor, walletID string, start, end time.Time) ([]ledger.Transaction, error) {
	if end.Before(start) {
		return nil, ledger.ErrQueryDateRange
	}
	r := s.uow.Reader()
	if err := requireUser(ctx, r, actor); err != nil {
		return nil, err
	}
	if _, err := ownedWallet(ctx, r, actor, walletID); err != nil {
		return nil, err
	}
	return r.Transactions().ListByWalletAndDateRange(ctx, walletID, start, end)
}

// owned loads a transaction and checks that actor owns its source wallet.
func (s *Transactions) owned(ctx context.Context, r ledger.Repos, actor, id string) (*ledger.Transaction, error) {
	txn, err := r.Transactions().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	w, err := r.Wallets().Get(ctx, txn.WalletID)
	if err != nil {
		return nil, err
	}
	if !w.OwnedBy(actor) {
		return nil, fmt.Errorf("%w: %s", ledger.ErrNotTransactionOwner, id)
	}
	return txn, nil
}

// resolve checks that the wallets and category txn references exist and are
// usable by actor.
func (s *Transactions) resolve(ctx context.Context, r ledger.Repos, actor string, txn *ledger.Transaction) error {
	src, err := ownedWallet(ctx, r, actor, txn.WalletID)
	if err != nil {
		return err
	}
	if txn.Type == ledger.Transfer {
		dst, err := ownedWallet(ctx, r, actor, txn.ToWalletID)
		if err != nil {
			return err
		}
		if src.Currency != dst.Currency {
			return fmt.Errorf("%w: %s vs %s", ledger.ErrCurrencyMismatch, src.Currency, dst.Currency)
		}
	}
	if txn.CategoryID != "" {
		if _, err := visibleCategory(ctx, r, actor, txn.CategoryID); err != nil {
			return err
		}
	}
	return nil
}
