package portfolio

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency of ledgers whose operations do not name one.
const DefaultCurrency = "BRL"

// Money represents a monetary value.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M creates a Money in the given currency.
func M[T float64 | int | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the string representation of the money value, e.g. "R$1.234,56".
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.Round(0).IntPart())
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.Rounded().IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Currency() string                { return m.cur }
func (m Money) Decimal() decimal.Decimal        { return m.value }
func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) LessThanOrEqual(n Money) bool    { return m.value.LessThanOrEqual(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Mul(q Quantity) Money            { return Money{value: m.value.Mul(q.value), cur: m.cur} }
func (m Money) Scale(f decimal.Decimal) Money   { return Money{value: m.value.Mul(f), cur: m.cur} }
func (m Money) AsFloat() float64                { return m.value.InexactFloat64() }

// Div divides by a quantity, a zero quantity yields zero.
func (m Money) Div(q Quantity) Money {
	if q.IsZero() {
		return Money{value: decimal.Zero, cur: m.cur}
	}
	return Money{value: m.value.Div(q.value), cur: m.cur}
}

// Ratio returns m/n, a zero n yields zero.
func (m Money) Ratio(n Money) decimal.Decimal {
	if n.IsZero() {
		return decimal.Zero
	}
	return m.value.Div(n.value)
}

// Rounded returns the value rounded to the currency's minor unit.
func (m Money) Rounded() Money {
	return Money{value: m.value.Round(int32(m.currency().Fraction)), cur: m.cur}
}

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// makes the "" currency totally weak.
func cur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + "!=" + b.cur)
	}
	return a.cur
}

// MaxMoney returns the largest of a and b.
func MaxMoney(a, b Money) Money {
	if b.GreaterThan(a) {
		return Money{value: b.value, cur: cur(a, b)}
	}
	return Money{value: a.value, cur: cur(a, b)}
}

// MarshalJSON writes the amount as a JSON number rounded to the currency's
// minor unit, except for amounts without currency which are kept exact.
func (m Money) MarshalJSON() ([]byte, error) {
	if m.cur == "" {
		return m.value.MarshalJSON()
	}
	return m.Rounded().value.MarshalJSON()
}

// UnmarshalJSON reads a JSON number. The currency is left unset.
func (m *Money) UnmarshalJSON(b []byte) error {
	return m.value.UnmarshalJSON(b)
}
