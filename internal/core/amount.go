// Package core holds the budget domain model shared by every component.
//
// This file contains amount parsing for free-text transaction messages.
// Amounts are exact decimals; floats are never used so that report sums
// cannot drift.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts the first token of a transaction message into a
// positive decimal amount.
//
// A single leading '+' or '-' is stripped: the sign convention of early
// message formats is accepted but never authoritative, since a transaction's
// direction comes from its category. Both '.' and ',' are accepted as the
// decimal separator. Zero, negative and non-numeric input fail with
// ErrInvalidAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.Sign() <= 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
