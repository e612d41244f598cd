package ledger

import (
	"fmt"
	"strings"
	"time"
)

type CategoryType string

const (
	CategoryIncome  CategoryType = "INCOME"
	CategoryExpense CategoryType = "EXPENSE"
)

func ValidCategoryType(t CategoryType) bool {
	return t == CategoryIncome || t == CategoryExpense
}

// Category classifies transactions. A category without a UserID is global:
// visible to everyone and editable by no one.
type Category struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Type      CategoryType `json:"type"`
	Icon      string       `json:"icon,omitempty"`
	Color     string       `json:"color,omitempty"`
	UserID    string       `json:"user_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

func (c *Category) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return ErrEmptyName
	}
	c.Type = CategoryType(strings.ToUpper(string(c.Type)))
	if !ValidCategoryType(c.Type) {
		return fmt.Errorf("%w: %q", ErrInvalidCategoryType, c.Type)
	}
	return nil
}

func (c *Category) IsGlobal() bool { return c.UserID == "" }

func (c *Category) VisibleTo(userID string) bool {
	return c.IsGlobal() || c.UserID == userID
}

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
