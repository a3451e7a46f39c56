// Package core provides the budgeting domain: items, intervals and the
// allocation of pay across items.
//
// This file contains the conversions between minor units and the decimal
// representation shown to users.
package core

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount in major units with two decimals, e.g. "12.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// FormatMinor formats an amount held in minor units.
func FormatMinor(cents int64) string {
	return Money{Cents: cents}.String()
}

// ParseWholeUnits reads a whole number of major units (e.g. pounds) and
// returns it in minor units. Negative values and fractions are rejected.
//
// Examples:
//
//	ParseWholeUnits("12")  -> 1200, nil
//	ParseWholeUnits(" 0 ") -> 0, nil
//	ParseWholeUnits("1.5") -> 0, ErrInvalidAmount
func ParseWholeUnits(s string) (int64, error) {
	v, err := ParseMinor(s)
	if err != nil {
		return 0, err
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if v > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	return v * 100, nil
}

// ParseMinor reads a non-negative integer amount already expressed in minor units.
func ParseMinor(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}
