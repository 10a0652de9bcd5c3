package taxlot

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type number interface {
	float64 | int | int64 | decimal.Decimal
}

// newDecimal converts literals in tests and fixtures.
func newDecimal[T number](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	}
	return any(value).(decimal.Decimal)
}

// parseDecimal parses a broker number. Thousands separators are ignored and an
// empty string is zero.
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return d, nil
}

// epsilon is the tolerance under which a quantity is considered zero by the
// matching engine.
var epsilon = decimal.New(1, -9)

// Quantity is a signed number of units of an instrument.
type Quantity struct {
	value decimal.Decimal
}

// Q returns the Quantity of value.
func Q[T number](value T) Quantity { return Quantity{value: newDecimal(value)} }

// ParseQuantity parses a raw quantity string.
func ParseQuantity(s string) (Quantity, error) {
	d, err := parseDecimal(s)
	return Quantity{value: d}, err
}

func (t Quantity) Equal(p Quantity) bool       { return t.value.Equal(p.value) }
func (t Quantity) LessThan(p Quantity) bool    { return t.value.LessThan(p.value) }
func (t Quantity) Div(p Quantity) Quantity     { return Quantity{value: t.value.Div(p.value)} }
func (t Quantity) Add(p Quantity) Quantity     { return Quantity{value: t.value.Add(p.value)} }
func (t Quantity) Sub(p Quantity) Quantity     { return Quantity{value: t.value.Sub(p.value)} }
func (t Quantity) GreaterThan(p Quantity) bool { return t.value.GreaterThan(p.value) }
func (t Quantity) IsNegative() bool            { return t.value.IsNegative() }
func (t Quantity) IsPositive() bool            { return t.value.IsPositive() }
func (t Quantity) IsZero() bool                { return t.value.IsZero() }
func (t Quantity) Abs() Quantity               { return Quantity{value: t.value.Abs()} }
func (t Quantity) Decimal() decimal.Decimal    { return t.value }
func (t Quantity) String() string              { return t.value.String() }

// Min returns the smallest of t and p.
func (t Quantity) Min(p Quantity) Quantity {
	if p.LessThan(t) {
		return p
	}
	return t
}

// negligible reports whether |t| is within the matching tolerance of zero.
func (t Quantity) negligible() bool { return t.value.Abs().LessThanOrEqual(epsilon) }

// Close reports whether t and p differ by no more than the matching tolerance.
func (t Quantity) Close(p Quantity) bool { return t.Sub(p).negligible() }

// MarshalJSON writes t as a JSON string, to keep its exact decimal value.
func (t Quantity) MarshalJSON() ([]byte, error) { return t.value.MarshalJSON() }

// UnmarshalJSON reads a quantity written as a JSON string or number.
func (t *Quantity) UnmarshalJSON(data []byte) error { return t.value.UnmarshalJSON(data) }
