package domain

import (
	"github.com/shopspring/decimal"
)

// Money is a non-negative monetary amount with two decimal places.
// All operations return new values; amounts are rounded
// half-away-from-zero on construction so downstream comparisons stay exact
// even after fractional discount math.
type Money struct {
	amount decimal.Decimal
}

var Zero = Money{amount: decimal.Zero}

// NewMoney builds a Money from a decimal, rejecting negative amounts.
func NewMoney(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, Validationf("money amount must not be negative, got %s", d)
	}
	return Money{amount: d.Round(2)}, nil
}

// NewMoneyFromFloat builds a Money from a float64.
func NewMoneyFromFloat(f float64) (Money, error) {
	return NewMoney(decimal.NewFromFloat(f))
}

// ParseMoney builds a Money from its decimal string form, e.g. "10.50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, Validationf("invalid money amount %q", s)
	}
	return NewMoney(d)
}

// MustMoney is a test/fixture helper; it panics on negative input.
func MustMoney(f float64) Money {
	m, err := NewMoneyFromFloat(f)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) IsZero() bool            { return m.amount.IsZero() }

func (m Money) Add(o Money) Money {
	return Money{amount: m.amount.Add(o.amount)}
}

// Sub returns m - o, failing when the result would be negative.
func (m Money) Sub(o Money) (Money, error) {
	r := m.amount.Sub(o.amount)
	if r.IsNegative() {
		return Money{}, Validationf("money subtraction result is negative: %s - %s", m, o)
	}
	return Money{amount: r}, nil
}

// MulInt multiplies by a non-negative integer scalar.
func (m Money) MulInt(n int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(n))).Round(2)}
}

// Mul multiplies by a non-negative decimal factor, rounding to two places.
func (m Money) Mul(factor decimal.Decimal) (Money, error) {
	return NewMoney(m.amount.Mul(factor))
}

// ErrDivisionByZero is returned by Div when the divisor is zero.
var ErrDivisionByZero = &Error{Kind: ErrValidation, Message: "money division by zero"}

// Div divides by an integer scalar; dividing by zero is an error.
func (m Money) Div(n int) (Money, error) {
	if n == 0 {
		return Money{}, ErrDivisionByZero
	}
	return NewMoney(m.amount.Div(decimal.NewFromInt(int64(n))))
}

func (m Money) Cmp(o Money) int          { return m.amount.Cmp(o.amount) }
func (m Money) Equal(o Money) bool       { return m.amount.Equal(o.amount) }
func (m Money) LessThan(o Money) bool    { return m.amount.LessThan(o.amount) }
func (m Money) GreaterThan(o Money) bool { return m.amount.GreaterThan(o.amount) }

func (m Money) String() string { return m.amount.StringFixed(2) }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
