// Package core provides money parsing and handling utilities.
//
// Amounts are kept as decimals end to end so that totals and percentages
// never pick up binary floating point noise.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a currency amount in the account's single currency.
type Money struct {
	d decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{d: d}
}

// MoneyFromString is a convenience for literals in code and tests. It panics
// on invalid input.
func MoneyFromString(s string) Money {
	return Money{d: decimal.RequireFromString(s)}
}

// ParseMoney parses a user supplied decimal string.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. The sign
// is preserved; callers decide whether zero or negative values are allowed.
//
// Examples:
//
//	ParseMoney("12.34") -> 12.34, nil
//	ParseMoney("12,34") -> 12.34, nil
//	ParseMoney("abc")   -> 0, ErrInvalidAmount
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{d: d}, nil
}

func (m Money) Decimal() decimal.Decimal { return m.d }

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }

func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }

func (m Money) IsZero() bool { return m.d.IsZero() }

func (m Money) IsPositive() bool { return m.d.IsPositive() }

func (m Money) IsNegative() bool { return m.d.IsNegative() }

func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

// String renders the amount with two decimals, e.g. "12.50".
func (m Money) String() string {
	return m.d.StringFixed(2)
}

// MarshalJSON writes a bare JSON number, which is what the API expects.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	return m.d.UnmarshalJSON(b)
}

func (m Money) Validate() error {
	if !m.d.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}
