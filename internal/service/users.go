package service

import (
	"context"
	"strings"

	"github.com/simonvc/pocketledger/internal/ledger"
)

type Users struct{ *core }

func (s *Users) Create(ctx context.Context, username string) (*ledger.User, error) {
	u := &ledger.User{Username: strings.TrimSpace(username)}
	if u.Username == "" {
		return nil, ledger.ErrEmptyName
	}
	err := s.mutate(ctx, nil, func(ctx context.Context, r *unit) error {
		u.CreatedAt = s.now().UTC()
		return r.Users().Insert(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", u.ID).Str("username", u.Username).Msg("user created")
	return u, nil
}

func (s *Users) Get(ctx context.Context, id string) (*ledger.User, error) {
	if id == "" {
		return nil, ledger.ErrMissingUser
	}
	return s.uow.Reader().Users().Get(ctx, id)
}

func (s *Users) Lookup(ctx context.Context, username string) (*ledger.User, error) {
	return s.uow.Reader().Users().GetByUsername(ctx, strings.TrimSpace(username))
}
