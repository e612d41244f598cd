package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/simonvc/pocketledger/internal/config"
	"github.com/simonvc/pocketledger/internal/lock"
	"github.com/simonvc/pocketledger/internal/notify"
	"github.com/simonvc/pocketledger/internal/service"
	"github.com/simonvc/pocketledger/internal/store"
)

// app is the wired server side: store, locks, notifiers and use cases.
type app struct {
	store *store.Store
	redis *redis.Client
	hub   *notify.Hub
	svc   *service.Service
}

func openApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a := &app{store: st, hub: notify.NewHub(log)}

	var locker lock.Locker = lock.NewLocal()
	if cfg.Lock.Backend == "redis" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.redis.Ping(pingCtx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		opts := lock.DefaultRedisOptions()
		opts.Expiry = cfg.Lock.Expiry
		locker = lock.NewRedis(a.redis, opts, log)
	}

	policy, err := cfg.Budget.Thresholds()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.svc = service.New(st,
		service.WithLocker(locker),
		service.WithNotifier(notify.Multi{notify.NewLog(log), a.hub}),
		service.WithPolicy(policy),
		service.WithLogger(log),
	)
	log.Info().
		Str("db", cfg.Database.Path).
		Str("lock", cfg.Lock.Backend).
		Str("warning_mode", cfg.Budget.WarningMode).
		Msg("ledger opened")
	return a, nil
}

func (a *app) Close() error {
	if a.redis != nil {
		a.redis.Close()
	}
	return a.store.Close()
}
