package taxlot

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M returns value units of currency.
func M[T number](value T, currency string) Money { return Money{value: newDecimal(value), cur: currency} }

// ParseMoney parses a raw broker amount in the given currency.
func ParseMoney(s, currency string) (Money, error) {
	d, err := parseDecimal(s)
	return Money{value: d, cur: currency}, err
}

// ValidateCurrency checks that cur is a known ISO 4217 currency code.
func ValidateCurrency(cur string) error {
	if cur == "" {
		return fmt.Errorf("currency is empty")
	}
	if money.GetCurrency(cur) == nil {
		return fmt.Errorf("unknown currency %q", cur)
	}
	return nil
}

// String formats m with its currency symbol, rounded to the currency minor unit.
func (m Money) String() string {
	cur := money.New(0, m.cur).Currency() // never nil, unlike GetCurrency
	minor := m.value.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}

func (m Money) Currency() string         { return m.cur }
func (m Money) Decimal() decimal.Decimal { return m.value }
func (m Money) Equal(n Money) bool       { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool             { return m.value.IsZero() }

// Convert returns m expressed in currency 'to' using rate units of 'to' per unit of m.
func (m Money) Convert(rate decimal.Decimal, to string) Money {
	return Money{value: m.value.Mul(rate), cur: to}
}

// Add and Sub panic on mismatched currencies, the empty currency matches any.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

func cur(a, b Money) string {
	switch {
	case a.cur == "":
		return b.cur
	case b.cur == "", a.cur == b.cur:
		return a.cur
	}
	panic(fmt.Sprintf("currency mismatch %s != %s", a.cur, b.cur))
}

func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("currency", m.cur)
	w.Append("amount", m.value)
	return w.MarshalJSON()
}
