package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/simonvc/pocketledger/internal/ledger"
)

// Ledger applies and reverses transaction effects on wallet balances. It is
// the only code that moves a balance after a wallet is created.
type Ledger struct {
	log zerolog.Logger
	now func() time.Time
}

func NewLedger(log zerolog.Logger, now func() time.Time) *Ledger {
	return &Ledger{log: log, now: now}
}

func (l *Ledger) ApplyEffect(ctx context.Context, r ledger.Repos, txn *ledger.Transaction) error {
	return l.post(ctx, r, txn, false)
}

// ReverseEffect undoes ApplyEffect exactly.
func (l *Ledger) ReverseEffect(ctx context.Context, r ledger.Repos, txn *ledger.Transaction) error {
	return l.post(ctx, r, txn, true)
}

func (l *Ledger) post(ctx context.Context, r ledger.Repos, txn *ledger.Transaction, reverse bool) error {
	for _, leg := range txn.Legs() {
		w, err := r.Wallets().Get(ctx, leg.WalletID)
		if err != nil {
			return err
		}
		delta := leg.Delta
		if reverse {
			delta = delta.Neg()
		}
		w.Apply(delta)
		w.ModifiedAt = l.now().UTC()
		if err := r.Wallets().Save(ctx, w); err != nil {
			return fmt.Errorf("post %s to wallet %s: %w", txn.ID, w.ID, err)
		}
		l.log.Debug().
			Str("transaction_id", txn.ID).
			Str("wallet_id", w.ID).
			Str("delta", delta.String()).
			Str("balance", w.Balance.String()).
			Msg("wallet posted")
	}
	return nil
}
