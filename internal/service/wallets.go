package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simonvc/pocketledger/internal/ledger"
	"github.com/simonvc/pocketledger/internal/lock"
	"go.opentelemetry.io/otel/attribute"
)

type WalletInput struct {
	Name           string            `json:"name"`
	Type           ledger.WalletType `json:"type"`
	Currency       string            `json:"currency"`
	InitialBalance decimal.Decimal   `json:"initial_balance"`
}

// WalletUpdate carries the fields a wallet owner may change. Balance is not
// among them.
type WalletUpdate struct {
	Name string            `json:"name"`
	Type ledger.WalletType `json:"type"`
}

type Wallets struct{ *core }

func (s *Wallets) Create(ctx context.Context, actor string, in WalletInput) (_ *ledger.Wallet, err error) {
	ctx, span := s.start(ctx, "wallets.create", attribute.String("user.id", actor))
	defer func() { finish(span, err) }()

	w := &ledger.Wallet{
		UserID:   actor,
		Name:     in.Name,
		Type:     in.Type,
		Currency: in.Currency,
		Balance:  in.InitialBalance,
	}
	if w.Type == "" {
		w.Type = ledger.WalletCash
	}
	if w.Currency == "" {
		w.Currency = "USD"
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if w.Balance.IsNegative() {
		return nil, fmt.Errorf("%w: initial balance must not be negative", ledger.ErrValidation)
	}

	err = s.mutate(ctx, nil, func(ctx context.Context, u *unit) error {
		if err := requireUser(ctx, u, actor); err != nil {
			return err
		}
		w.CreatedAt = s.now().UTC()
		w.ModifiedAt = w.CreatedAt
		return u.Wallets().Insert(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Wallets) Get(ctx context.Context, actor, id string) (*ledger.Wallet, error) {
	r := s.uow.Reader()
	if err := requireUser(ctx, r, actor); err != nil {
		return nil, err
	}
	return ownedWallet(ctx, r, actor, id)
}

func (s *Wallets) List(ctx context.Context, actor string) ([]ledger.Wallet, error) {
	r := s.uow.Reader()
	if err := requireUser(ctx, r, actor); err != nil {
		return nil, err
	}
	return r.Wallets().ListByUser(ctx, actor)
}

func (s *Wallets) Update(ctx context.Context, actor, id string, in WalletUpdate) (_ *ledger.Wallet, err error) {
	ctx, span := s.start(ctx, "wallets.update",
		attribute.String("user.id", actor), attribute.String("wallet.id", id))
	defer func() { finish(span, err) }()

	var w *ledger.Wallet
	err = s.mutate(ctx, []string{lock.WalletKey(id)}, func(ctx context.Context, u *unit) error {
		if err := requireUser(ctx, u, actor); err != nil {
			return err
		}
		var err error
		if w, err = ownedWallet(ctx, u, actor, id); err != nil {
			return err
		}
		if in.Name != "" {
			w.Name = in.Name
		}
		if in.Type != "" {
			w.Type = in.Type
		}
		if err := w.Validate(); err != nil {
			return err
		}
		w.ModifiedAt = s.now().UTC()
		return u.Wallets().Save(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Delete removes a wallet no transaction references.
func (s *Wallets) Delete(ctx context.Context, actor, id string) (err error) {
	ctx, span := s.start(ctx, "wallets.delete",
		attribute.String("user.id", actor), attribute.String("wallet.id", id))
	defer func() { finish(span, err) }()

	return s.mutate(ctx, []string{lock.WalletKey(id)}, func(ctx context.Context, u *unit) error {
		if err := requireUser(ctx, u, actor); err != nil {
			return err
		}
		if _, err := ownedWallet(ctx, u, actor, id); err != nil {
			return err
		}
		n, err := u.Transactions().CountByWallet(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %s has %d", ledger.ErrWalletInUse, id, n)
		}
		return u.Wallets().Delete(ctx, id)
	})
}
