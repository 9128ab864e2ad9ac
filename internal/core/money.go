// Package core provides money parsing and handling utilities.
//
// Amounts are kept as signed integer cents. Parsing and formatting go through
// shopspring/decimal so that no floating point value is ever used for
// arithmetic.
package core

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// maxDollars bounds parsed input so cents always fit in an int64.
var maxDollars = decimal.New(1, 15)

// Cents builds a Money from a cent count.
func Cents(c int64) Money { return Money{Cents: c} }

// Dollars builds a Money from whole dollars.
func Dollars(d int64) Money { return Money{Cents: d * 100} }

// ParseAmount converts user input to Money with half-up rounding on the third
// decimal place.
//
// A leading sign, a dollar sign and comma thousands separators are accepted.
// Blank input is zero, since every tracked amount defaults to zero.
//
// Examples:
//
//	ParseAmount("1,234.56") -> 123456
//	ParseAmount("$12.345")  -> 1235
//	ParseAmount("-0.005")   -> -1
//	ParseAmount("")         -> 0
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, nil
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || !isPlainDecimal(s) {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if d.GreaterThanOrEqual(maxDollars) {
		return Money{}, fmt.Errorf("%w: %s is too large", ErrInvalidAmount, s)
	}
	if neg {
		d = d.Neg()
	}
	return FromDecimal(d), nil
}

// isPlainDecimal accepts digits with at most one dot.
func isPlainDecimal(s string) bool {
	dots := 0
	for _, r := range s {
		switch {
		case r == '.':
			dots++
		case r < '0' || r > '9':
			return false
		}
	}
	return dots <= 1 && s != "."
}

// FromDecimal rounds d half away from zero to cents.
func FromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// Decimal returns the exact decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Add returns m + o.
func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

// Sub returns m - o.
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// Neg returns -m.
func (m Money) Neg() Money { return Money{Cents: -m.Cents} }

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.Cents == 0 }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m.Cents < 0 }

// Sum adds any number of amounts.
func Sum(ms ...Money) Money {
	var total Money
	for _, m := range ms {
		total.Cents += m.Cents
	}
	return total
}

// String renders the plain form used in forms and storage, e.g. "-1234.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Format renders the display form, e.g. "$1,234.50" or "-$12.00".
func (m Money) Format() string {
	c := m.Cents
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(c/100), c%100)
}

// Float returns the value as a float64 for chart payloads only.
// Note: Use cents for calculations to avoid floating-point precision issues.
func (m Money) Float() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or string.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		*m = Money{}
		return nil
	}
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// NullMoney is an amount that may be absent. Absent is distinct from zero:
// it means no data was available to compute the value.
type NullMoney struct {
	Money
	Valid bool
}

// Some wraps a present amount.
func Some(m Money) NullMoney { return NullMoney{Money: m, Valid: true} }

// Sub returns n - o, absent unless both sides are present.
func (n NullMoney) Sub(o NullMoney) NullMoney {
	if !n.Valid || !o.Valid {
		return NullMoney{}
	}
	return Some(n.Money.Sub(o.Money))
}

// Format renders the amount or "n/a" when absent.
func (n NullMoney) Format() string {
	if !n.Valid {
		return "n/a"
	}
	return n.Money.Format()
}

// MarshalJSON encodes null when absent.
func (n NullMoney) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return n.Money.MarshalJSON()
}

// UnmarshalJSON decodes null as absent.
func (n *NullMoney) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = NullMoney{}
		return nil
	}
	if err := n.Money.UnmarshalJSON(b); err != nil {
		return err
	}
	n.Valid = true
	return nil
}
