// Package money parses and formats currency amounts. Amounts are fixed-point
// decimals with at most two fractional digits, matching NUMERIC(15,2) storage.
package money

import (
	"strings"

	"github.com/dmitrijs2005/minibank/internal/common"
	"github.com/shopspring/decimal"
)

const Scale = 2

// Exponent bounds accepted before any rescaling. Anything outside them
// cannot fit NUMERIC(15,2) and would make Truncate build a huge power of ten.
const (
	MinExponent = -18
	MaxExponent = 15
)

// MaxAmount is the largest value a NUMERIC(15,2) column can hold.
var MaxAmount = decimal.RequireFromString("9999999999999.99")

// Parse reads a non-negative amount. It is used for configuration values
// such as the opening balance where zero is allowed.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, common.NewError(common.CodeValidation, "amount must be a number")
	}
	if d.IsNegative() {
		return decimal.Zero, common.NewError(common.CodeValidation, "amount must not be negative")
	}
	if err := checkRange(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ParseAmount reads a transfer amount: a number greater than zero with at
// most two decimal places.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, common.NewError(common.CodeValidation, "amount is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, common.NewError(common.CodeValidation, "amount must be a number")
	}
	return d, CheckPositive(d)
}

// CheckPositive validates an already decoded transfer amount.
func CheckPositive(d decimal.Decimal) error {
	if !d.IsPositive() {
		return common.ErrInvalidAmount
	}
	return checkRange(d)
}

func checkRange(d decimal.Decimal) error {
	if exp := d.Exponent(); exp < MinExponent || exp > MaxExponent {
		return common.NewError(common.CodeValidation, "amount is out of range")
	}
	if !d.Equal(d.Truncate(Scale)) {
		return common.NewError(common.CodeValidation, "amount must have at most 2 decimal places")
	}
	if d.GreaterThan(MaxAmount) {
		return common.NewError(common.CodeValidation, "amount is too large")
	}
	return nil
}

// Format renders d with exactly two decimal places.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}
