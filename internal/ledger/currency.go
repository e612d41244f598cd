package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

type CurrencyDef struct {
	Code     string
	Name     string
	Exponent int32 // 2 for USD (100 cents), 0 for JPY
}

var Currencies = map[string]CurrencyDef{
	"USD": {Code: "USD", Name: "US Dollar", Exponent: 2},
	"EUR": {Code: "EUR", Name: "Euro", Exponent: 2},
	"GBP": {Code: "GBP", Name: "Pound Sterling", Exponent: 2},
	"JPY": {Code: "JPY", Name: "Japanese Yen", Exponent: 0},
	"CHF": {Code: "CHF", Name: "Swiss Franc", Exponent: 2},
	"AUD": {Code: "AUD", Name: "Australian Dollar", Exponent: 2},
	"CAD": {Code: "CAD", Name: "Canadian Dollar", Exponent: 2},
	"CNY": {Code: "CNY", Name: "Chinese Yuan", Exponent: 2},
	"INR": {Code: "INR", Name: "Indian Rupee", Exponent: 2},
	"IDR": {Code: "IDR", Name: "Indonesian Rupiah", Exponent: 2},
	"SGD": {Code: "SGD", Name: "Singapore Dollar", Exponent: 2},
	"HKD": {Code: "HKD", Name: "Hong Kong Dollar", Exponent: 2},
	"NZD": {Code: "NZD", Name: "New Zealand Dollar", Exponent: 2},
	"SEK": {Code: "SEK", Name: "Swedish Krona", Exponent: 2},
	"NOK": {Code: "NOK", Name: "Norwegian Krone", Exponent: 2},
	"KRW": {Code: "KRW", Name: "South Korean Won", Exponent: 0},
	"BRL": {Code: "BRL", Name: "Brazilian Real", Exponent: 2},
	"ZAR": {Code: "ZAR", Name: "South African Rand", Exponent: 2},
}

func ValidCurrency(code string) bool {
	_, ok := Currencies[code]
	return ok
}

// NormalizeCurrency upper-cases and validates a currency code.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !ValidCurrency(code) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return code, nil
}

// ParseAmount parses a decimal string such as "10.50". Precision is kept as
// given; the currency exponent only affects display.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", ErrValidation, s)
	}
	return d, nil
}

// FormatAmount renders an amount with the currency's minor-unit digits.
// E.g. 10.5 USD -> "10.50".
func FormatAmount(amount decimal.Decimal, currency string) string {
	cur, ok := Currencies[currency]
	if !ok {
		return amount.String() + " " + currency
	}
	return amount.StringFixed(cur.Exponent)
}

// CurrencyCodes returns a sorted list of supported currency codes.
func CurrencyCodes() []string {
	codes := make([]string, 0, len(Currencies))
	for code := range Currencies {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}
