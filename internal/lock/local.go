package lock

import (
	"context"
	"sync"
)

// Local is an in-process keyed mutex. It is enough when a single server
// process owns the database.
type Local struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	sem  chan struct{}
	refs int
}

func NewLocal() *Local {
	return &Local{locks: make(map[string]*entry)}
}

func (l *Local) WithLocks(ctx context.Context, keys []string, fn func(context.Context) error) error {
	keys = normalize(keys)
	held := make([]string, 0, len(keys))
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			l.release(held[i])
		}
	}()

	for _, k := range keys {
		if err := l.acquire(ctx, k); err != nil {
			return err
		}
		held = append(held, k)
	}
	return fn(ctx)
}

func (l *Local) acquire(ctx context.Context, key string) error {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		l.unref(key, e)
		l.mu.Unlock()
		return ctx.Err()
	}
}

func (l *Local) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.locks[key]
	<-e.sem
	l.unref(key, e)
}

func (l *Local) unref(key string, e *entry) {
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

// size reports how many keys are tracked; used by tests to check cleanup.
func (l *Local) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
