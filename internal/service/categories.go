package service

import (
	"context"
	"fmt"

	"github.com/simonvc/pocketledger/internal/ledger"
)

type CategoryInput struct {
	Name  string              `json:"name"`
	Type  ledger.CategoryType `json:"type"`
	Icon  string              `json:"icon,omitempty"`
	Color string              `json:"color,omitempty"`
	// Global categories are shared by every user and cannot be edited.
	Global bool `json:"global,omitempty"`
}

type Categories struct{ *core }

func (s *Categories) Create(ctx context.Context, actor string, in CategoryInput) (*ledger.Category, error) {
	c := &ledger.Category{Name: in.Name, Type: in.Type, Icon: in.Icon, Color: in.Color}
	if !in.Global {
		c.UserID = actor
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	err := s.mutate(ctx, nil, func(ctx context.Context, u *unit) error {
		if err := requireUser(ctx, u, actor); err != nil {
			return err
		}
		c.CreatedAt = s.now().UTC()
		return u.Categories().Insert(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Categories) Get(ctx context.Context, actor, id string) (*ledger.Category, error) {
	r := s.uow.Reader()
	if err := requireUser(ctx, r, actor); err != nil {
		return nil, err
	}
	return visibleCategory(ctx, r, actor, id)
}

func (s *Categories) List(ctx context.Context, actor string) ([]ledger.Category, error) {
	r := s.uow.Reader()
	if err := requireUser(ctx, r, actor); err != nil {
		return nil, err
	}
	return r.Categories().ListVisible(ctx, actor)
}

func (s *Categories) Update(ctx context.Context, actor, id string, in CategoryInput) (*ledger.Category, error) {
	var c *ledger.Category
	err := s.mutate(ctx, nil, func(ctx context.Context, u *unit) error {
		var err error
		if c, err = s.editable(ctx, u, actor, id); err != nil {
			return err
		}
		if in.Name != "" {
			c.Name = in.Name
		}
		if in.Type != "" {
			c.Type = in.Type
		}
		if in.Icon != "" {
			c.Icon = in.Icon
		}
		if in.Color != "" {
			c.Color = in.Color
		}
		if err := c.Validate(); err != nil {
			return err
		}
		return u.Categories().Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a category nothing references.
func (s *Categories) Delete(ctx context.Context, actor, id string) error {
	return s.mutate(ctx, nil, func(ctx context.Context, u *unit) error {
		if _, err := s.editable(ctx, u, actor, id); err != nil {
			return err
		}
		txns, err := u.Transactions().CountByCategory(ctx, id)
		if err != nil {
			return err
		}
		budgets, err := u.Budgets().CountByCategory(ctx, id)
		if err != nil {
			return err
		}
		if txns+budgets > 0 {
			return fmt.Errorf("%w: %s", ledger.ErrCategoryInUse, id)
		}
		return u.Categories().Delete(ctx, id)
	})
}

func (s *Categories) editable(ctx context.Context, r ledger.Repos, actor, id string) (*ledger.Category, error) {
	if err := requireUser(ctx, r, actor); err != nil {
		return nil, err
	}
	c, err := r.Categories().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsGlobal() {
		return nil, fmt.Errorf("%w: %s", ledger.ErrGlobalCategory, id)
	}
	if c.UserID != actor {
		return nil, fmt.Errorf("%w: %s", ledger.ErrNotCategoryOwner, id)
	}
	return c, nil
}
