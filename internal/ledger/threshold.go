package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Signal string

const (
	SignalNone     Signal = ""
	SignalWarning  Signal = "WARNING"
	SignalExceeded Signal = "EXCEEDED"
)

// BudgetSignal is raised when a budget crosses a threshold.
type BudgetSignal struct {
	Kind   Signal          `json:"kind"`
	Budget Budget          `json:"budget"`
	Spent  decimal.Decimal `json:"spent"`
	Limit  decimal.Decimal `json:"limit"`
	At     time.Time       `json:"at"`
}

type ThresholdPolicy interface {
	Evaluate(spent, limit decimal.Decimal) Signal
}

// WarningPredicate decides whether a not-yet-exceeded budget deserves a warning.
type WarningPredicate func(spent, limit decimal.Decimal) bool

var defaultRatio = decimal.RequireFromString("0.8")

// LegacyWarning fires when spent*0.8 > limit. Since that implies spent > limit,
// it never fires on its own; exceeded always wins. Kept as the default for
// compatibility with existing alert consumers.
func LegacyWarning(spent, limit decimal.Decimal) bool {
	return spent.Mul(defaultRatio).GreaterThan(limit)
}

// RatioWarning fires once spent passes ratio*limit.
func RatioWarning(ratio decimal.Decimal) WarningPredicate {
	return func(spent, limit decimal.Decimal) bool {
		return spent.GreaterThan(limit.Mul(ratio))
	}
}

// Thresholds is the standard policy: exceeded when spent > limit, otherwise
// the warning predicate decides.
type Thresholds struct {
	Warning WarningPredicate
}

func (p Thresholds) Evaluate(spent, limit decimal.Decimal) Signal {
	if spent.GreaterThan(limit) {
		return SignalExceeded
	}
	if p.Warning != nil && p.Warning(spent, limit) {
		return SignalWarning
	}
	return SignalNone
}

func DefaultThresholds() Thresholds {
	return Thresholds{Warning: LegacyWarning}
}

const (
	WarningModeLegacy = "legacy"
	WarningModeRatio  = "ratio"
)

// ThresholdsFor builds a policy from a configured warning mode.
func ThresholdsFor(mode string, ratio decimal.Decimal) (Thresholds, error) {
	switch mode {
	case "", WarningModeLegacy:
		return DefaultThresholds(), nil
	case WarningModeRatio:
		if !ratio.IsPositive() {
			ratio = defaultRatio
		}
		return Thresholds{Warning: RatioWarning(ratio)}, nil
	default:
		return Thresholds{}, fmt.Errorf("%w: unknown warning mode %q", ErrValidation, mode)
	}
}
