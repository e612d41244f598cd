// Package service holds the use cases. Every mutation runs as one atomic
// unit under aggregate locks; budget signals go out after commit.
package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/simonvc/pocketledger/internal/ledger"
	"github.com/simonvc/pocketledger/internal/lock"
	"github.com/simonvc/pocketledger/internal/notify"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/simonvc/pocketledger/internal/service"

type Service struct {
	Users        *Users
	Wallets      *Wallets
	Categories   *Categories
	Transactions *Transactions
	Budgets      *Budgets
}

type Option func(*core)

func WithLocker(l lock.Locker) Option { return func(c *core) { c.locker = l } }

func WithNotifier(n notify.Notifier) Option { return func(c *core) { c.notifier = n } }

func WithPolicy(p ledger.ThresholdPolicy) Option { return func(c *core) { c.policy = p } }

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *core) { c.tracer = tp.Tracer(tracerName) }
}

func WithLogger(log zerolog.Logger) Option { return func(c *core) { c.log = log } }

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option { return func(c *core) { c.now = now } }

func New(uow ledger.UnitOfWork, opts ...Option) *Service {
	c := &core{
		uow:      uow,
		locker:   lock.NewLocal(),
		notifier: notify.Nop{},
		policy:   ledger.DefaultThresholds(),
		tracer:   otel.Tracer(tracerName),
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ledger = NewLedger(c.log, c.now)
	c.tracker = NewBudgetTracker(c.policy, c.log, c.now)

	return &Service{
		Users:        &Users{c},
		Wallets:      &Wallets{c},
		Categories:   &Categories{c},
		Transactions: &Transactions{c},
		Budgets:      &Budgets{c},
	}
}

type core struct {
	uow      ledger.UnitOfWork
	locker   lock.Locker
	notifier notify.Notifier
	policy   ledger.ThresholdPolicy
	tracer   trace.Tracer
	log      zerolog.Logger
	now      func() time.Time

	ledger  *Ledger
	tracker *BudgetTracker
}

// unit is the view of an in-flight unit of work handed to mutation bodies.
type unit struct {
	ledger.Repos
	signals []ledger.BudgetSignal
}

func (u *unit) raise(sigs ...ledger.BudgetSignal) {
	u.signals = append(u.signals, sigs...)
}

// mutate locks keys, runs fn in one atomic unit and, once committed,
// dispatches whatever signals fn raised.
func (c *core) mutate(ctx context.Context, keys []string, fn func(ctx context.Context, u *unit) error) error {
	var signals []ledger.BudgetSignal
	err := c.locker.WithLocks(ctx, keys, func(ctx context.Context) error {
		return c.uow.Atomic(ctx, func(r ledger.Repos) error {
			u := &unit{Repos: r}
			if err := fn(ctx, u); err != nil {
				return err
			}
			signals = u.signals
			return nil
		})
	})
	if err != nil {
		return err
	}
	for _, sig := range signals {
		notify.Dispatch(ctx, c.notifier, sig)
	}
	return nil
}

func (c *core) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func requireUser(ctx context.Context, r ledger.Repos, actor string) error {
	if actor == "" {
		return ledger.ErrMissingUser
	}
	_, err := r.Users().Get(ctx, actor)
	return err
}

func ownedWallet(ctx context.Context, r ledger.Repos, actor, id string) (*ledger.Wallet, error) {
	w, err := r.Wallets().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !w.OwnedBy(actor) {
		return nil, fmt.Errorf("%w: %s", ledger.ErrNotWalletOwner, id)
	}
	return w, nil
}

func visibleCategory(ctx context.Context, r ledger.Repos, actor, id string) (*ledger.Category, error) {
	c, err := r.Categories().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.VisibleTo(actor) {
		return nil, fmt.Errorf("%w: %s", ledger.ErrNotCategoryOwner, id)
	}
	return c, nil
}

func walletKeys(txns ...*ledger.Transaction) []string {
	var keys []string
	for _, t := range txns {
		for _, id := range t.WalletIDs() {
			keys = append(keys, lock.WalletKey(id))
		}
	}
	return keys
}

// covered reports whether every wallet txn touches is among the held keys.
func covered(held []string, txn *ledger.Transaction) bool {
	for _, k := range walletKeys(txn) {
		if !slices.Contains(held, k) {
			return false
		}
	}
	return true
}
