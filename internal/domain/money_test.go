package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoneyRejectsNegative(t *testing.T) {
	_, err := NewMoney(decimal.NewFromFloat(-0.01))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = NewMoneyFromFloat(-10)
	require.Error(t, err)
}

func TestNewMoneyRoundsHalfAwayFromZero(t *testing.T) {
	m, err := NewMoneyFromFloat(10.005)
	require.NoError(t, err)
	assert.Equal(t, "10.01", m.String())

	m, err = NewMoneyFromFloat(10.004)
	require.NoError(t, err)
	assert.Equal(t, "10.00", m.String())
}

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney("19.90")
	require.NoError(t, err)
	assert.Equal(t, "19.90", m.String())

	_, err = ParseMoney("not-a-number")
	assert.Error(t, err)

	_, err = ParseMoney("-3.50")
	assert.Error(t, err)
}

func TestMoneyArithmetic(t *testing.T) {
	a := MustMoney(10.50)
	b := MustMoney(2.25)

	assert.Equal(t, "12.75", a.Add(b).String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, "8.25", diff.String())

	assert.Equal(t, "31.50", a.MulInt(3).String())
}

func TestMoneySubNeverGoesNegative(t *testing.T) {
	a := MustMoney(1)
	b := MustMoney(2)

	_, err := a.Sub(b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestMoneyDiv(t *testing.T) {
	m := MustMoney(10)

	half, err := m.Div(2)
	require.NoError(t, err)
	assert.Equal(t, "5.00", half.String())

	// division rounds to cents
	third, err := m.Div(3)
	require.NoError(t, err)
	assert.Equal(t, "3.33", third.String())

	_, err = m.Div(0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestMoneyComparisons(t *testing.T) {
	a := MustMoney(5)
	b := MustMoney(7)

	assert.True(t, a.LessThan(b))
	assert.True(t, b.GreaterThan(a))
	assert.True(t, a.Equal(MustMoney(5.00)))
	assert.Equal(t, -1, a.Cmp(b))
	assert.True(t, Zero.IsZero())
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := MustMoney(99.90)

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `"99.90"`, string(raw))

	var back Money
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, m.Equal(back))

	var bad Money
	assert.Error(t, json.Unmarshal([]byte(`"-1.00"`), &bad))
}
