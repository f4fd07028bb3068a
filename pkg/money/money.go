package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a currency amount in integer cents. All arithmetic happens on
// the integer representation; decimal conversion only occurs at JSON and
// display boundaries.
type Money int64

// Zero is the additive identity.
const Zero Money = 0

var centFactor = decimal.NewFromInt(100)

// FromCents wraps a raw cent count.
func FromCents(cents int64) Money {
	return Money(cents)
}

// FromDecimal converts a decimal currency amount, rounding to the nearest
// cent (bankers rounding is not used; the backend stores plain 2-dp values).
func FromDecimal(d decimal.Decimal) Money {
	return Money(d.Mul(centFactor).Round(0).IntPart())
}

// Parse reads a decimal string such as "4.35".
func Parse(value string) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("parsing money %q: %w", value, err)
	}
	return FromDecimal(d), nil
}

// MustParse is Parse for literals in tests and fixtures.
func MustParse(value string) Money {
	m, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return m
}

// Cents returns the raw cent count.
func (m Money) Cents() int64 {
	return int64(m)
}

// Decimal returns the exact decimal value with cent precision.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return m + other
}

// MulInt returns m scaled by a unit count.
func (m Money) MulInt(n int64) Money {
	return Money(int64(m) * n)
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m < 0
}

// String renders the amount with two decimal places, e.g. "4.35".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON emits a bare 2-dp decimal number, matching the backend's
// price/total fields.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().StringFixed(2)), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string;
// the backend emits both depending on the column driver.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	if raw == "null" || raw == "" {
		*m = Zero
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("unmarshaling money %s: %w", string(data), err)
	}
	*m = FromDecimal(d)
	return nil
}
