package ledger

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the service layer wraps exactly one
// of these so transports can classify it with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidRange = errors.New("invalid range")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("concurrent modification")
	ErrDuplicate    = errors.New("already exists")
)

var (
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrWalletNotFound      = fmt.Errorf("wallet %w", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)
	ErrBudgetNotFound      = fmt.Errorf("budget %w", ErrNotFound)
	ErrCategoryNotFound    = fmt.Errorf("category %w", ErrNotFound)

	ErrNotWalletOwner      = fmt.Errorf("%w: wallet belongs to another user", ErrForbidden)
	ErrNotBudgetOwner      = fmt.Errorf("%w: budget belongs to another user", ErrForbidden)
	ErrNotCategoryOwner    = fmt.Errorf("%w: category belongs to another user", ErrForbidden)
	ErrGlobalCategory      = fmt.Errorf("%w: global categories are read-only", ErrForbidden)
	ErrNotTransactionOwner = fmt.Errorf("%w: transaction belongs to another user", ErrForbidden)

	ErrBudgetDateRange = fmt.Errorf("%w: end date must not be before start date", ErrInvalidRange)
	ErrQueryDateRange  = fmt.Errorf("%w: end must not be before start", ErrInvalidRange)

	ErrInvalidAmount          = fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	ErrInvalidTransactionType = fmt.Errorf("%w: invalid transaction type", ErrValidation)
	ErrInvalidWalletType      = fmt.Errorf("%w: invalid wallet type", ErrValidation)
	ErrInvalidCategoryType    = fmt.Errorf("%w: invalid category type", ErrValidation)
	ErrInvalidCurrency        = fmt.Errorf("%w: invalid or unsupported currency code", ErrValidation)
	ErrCurrencyMismatch       = fmt.Errorf("%w: transfer wallets must share a currency", ErrValidation)
	ErrMissingDate            = fmt.Errorf("%w: date is required", ErrValidation)
	ErrMissingWallet          = fmt.Errorf("%w: wallet_id is required", ErrValidation)
	ErrMissingTargetWallet    = fmt.Errorf("%w: transfers require to_wallet_id", ErrValidation)
	ErrUnexpectedTarget       = fmt.Errorf("%w: to_wallet_id is only valid for transfers", ErrValidation)
	ErrSelfTransfer           = fmt.Errorf("%w: cannot transfer to the same wallet", ErrValidation)
	ErrTransferCategory       = fmt.Errorf("%w: transfers cannot carry a category", ErrValidation)
	ErrEmptyName              = fmt.Errorf("%w: name is required", ErrValidation)
	ErrMissingCategory        = fmt.Errorf("%w: category_id is required", ErrValidation)
	ErrWalletInUse            = fmt.Errorf("%w: wallet has transactions", ErrValidation)
	ErrCategoryInUse          = fmt.Errorf("%w: category is referenced by transactions or budgets", ErrValidation)
	ErrMissingUser            = fmt.Errorf("%w: user id is required", ErrValidation)

	ErrUsernameTaken = fmt.Errorf("username %w", ErrDuplicate)
)
