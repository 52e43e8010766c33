// Package core provides the ledger domain types.
//
// This file contains amount parsing and formatting. Amounts are kept as integer
// cents everywhere; shopspring/decimal is only used at the text boundary so that
// no value ever passes through a float.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// maxCents keeps amount arithmetic far away from int64 overflow.
var maxCents = decimal.NewFromInt(1<<53 - 1)

// ParseAmount converts user input into a non-negative Money value.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted and the
// value is rounded half-up to cents. Signs, exponents, thousands separators,
// and anything that is not a plain decimal number are rejected. Zero is allowed.
//
// Examples:
//
//	ParseAmount("2000")   -> 200000 cents
//	ParseAmount("12,5")   -> 1250 cents
//	ParseAmount("1.005")  -> 101 cents
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	dots := 0
	digits := 0
	for _, r := range s {
		switch {
		case r == '.':
			dots++
		case r >= '0' && r <= '9':
			digits++
		default:
			return Money{}, ErrInvalidAmount
		}
	}
	if dots > 1 || digits == 0 {
		return Money{}, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Round(2).Shift(2)
	if cents.IsNegative() || cents.GreaterThan(maxCents) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the amount with exactly two fractional digits, e.g. "1950.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}
