// Package lock serializes mutations that touch the same wallets or budgets.
//
// Keys are acquired in sorted order so two callers locking overlapping sets
// can never deadlock each other.
package lock

import (
	"context"
	"slices"
)

type Locker interface {
	// WithLocks runs fn while holding every key. Locks are released when fn
	// returns, including on panic.
	WithLocks(ctx context.Context, keys []string, fn func(context.Context) error) error
}

func WalletKey(id string) string { return "wallet:" + id }

// BudgetsKey guards every budget owned by userID.
func BudgetsKey(userID string) string { return "budgets:" + userID }

// normalize returns the keys sorted and de-duplicated, skipping empties.
func normalize(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
