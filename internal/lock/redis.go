package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/simonvc/pocketledger/internal/ledger"
)

type RedisOptions struct {
	Prefix     string
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Prefix:     "pocketledger:lock:",
		Expiry:     10 * time.Second,
		Tries:      32,
		RetryDelay: 50 * time.Millisecond,
	}
}

// Redis coordinates several server processes that share one database.
type Redis struct {
	rs   *redsync.Redsync
	opts RedisOptions
	log  zerolog.Logger
}

func NewRedis(client redis.UniversalClient, opts RedisOptions, log zerolog.Logger) *Redis {
	return &Redis{
		rs:   redsync.New(goredis.NewPool(client)),
		opts: opts,
		log:  log,
	}
}

func (l *Redis) WithLocks(ctx context.Context, keys []string, fn func(context.Context) error) error {
	keys = normalize(keys)
	held := make([]*redsync.Mutex, 0, len(keys))
	defer func() {
		unlockCtx := context.WithoutCancel(ctx)
		for i := len(held) - 1; i >= 0; i-- {
			if ok, err := held[i].UnlockContext(unlockCtx); !ok || err != nil {
				l.log.Error().Err(err).Str("lock_key", held[i].Name()).Msg("failed to release lock")
			}
		}
	}()

	for _, k := range keys {
		m := l.rs.NewMutex(
			l.opts.Prefix+k,
			redsync.WithExpiry(l.opts.Expiry),
			redsync.WithTries(l.opts.Tries),
			redsync.WithRetryDelay(l.opts.RetryDelay),
		)
		if err := m.LockContext(ctx); err != nil {
			return fmt.Errorf("%w: acquire lock %s: %v", ledger.ErrConflict, k, err)
		}
		l.log.Debug().Str("lock_key", k).Msg("lock acquired")
		held = append(held, m)
	}
	return fn(ctx)
}
