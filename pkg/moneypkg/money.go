// Package moneypkg provides exact decimal money arithmetic.
package moneypkg

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount indicates a string that does not parse as a money amount.
var ErrInvalidAmount = errors.New("invalid money amount")

// Money is an exact decimal amount. The embedded decimal provides SQL
// Scan/Value and JSON marshaling, so Money can be stored and served as-is.
type Money struct {
	decimal.Decimal
}

// New wraps a decimal into Money.
func New(d decimal.Decimal) Money {
	return Money{d}
}

// Zero returns the zero amount.
func Zero() Money {
	return Money{decimal.New(0, 0)}
}

// Parse converts a decimal string into Money.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	return Money{d}, nil
}

// MustParse converts a decimal string into Money and panics on failure.
// Intended for constants and tests.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return m
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{m.Decimal.Add(o.Decimal)}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{m.Decimal.Sub(o.Decimal)}
}

// LessThan reports whether m < o.
func (m Money) LessThan(o Money) bool {
	return m.Decimal.LessThan(o.Decimal)
}

// Equal reports whether m and o represent the same amount, regardless of
// exponent representation.
func (m Money) Equal(o Money) bool {
	return m.Decimal.Equal(o.Decimal)
}

// IsPositive reports whether m > 0.
func (m Money) IsPositive() bool {
	return m.Decimal.IsPositive()
}
