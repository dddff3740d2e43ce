package assets

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents an amount in a currency, for display.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M returns the Money value of amount in currency.
func M(amount decimal.Decimal, currency string) Money {
	return Money{value: amount, cur: currency}
}

// currency returns the money's currency.
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the amount formatted for its currency, e.g. "$1,200.00".
// Amounts too large to be formatted in minor units are printed as Fixed
// followed by the currency code.
func (m Money) String() string {
	cur := m.currency()
	minor := m.value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	if !minor.BigInt().IsInt64() {
		return m.Fixed() + " " + m.cur
	}
	return cur.Formatter().Format(minor.IntPart())
}

// Fixed returns the amount with two decimals and no symbol, e.g. "1200.00".
func (m Money) Fixed() string { return m.value.StringFixed(2) }

func (m Money) Currency() string         { return m.cur }
func (m Money) Amount() decimal.Decimal  { return m.value }
func (m Money) Equal(n Money) bool       { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) LessThan(n Money) bool    { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool { return m.value.GreaterThan(n.value) }
