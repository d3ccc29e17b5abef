package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kes(amount float64) Money {
	return NewMoneyKESFromFloat(amount)
}

func TestMoneyConstructors(t *testing.T) {
	t.Run("explicit currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(2500.75), KES)
		require.NoError(t, err)
		assert.Equal(t, KES, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(2500.75)))
	})

	t.Run("empty currency rejected", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(500), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})

	t.Run("from float", func(t *testing.T) {
		m, err := NewMoneyFromFloat(149.95, USD)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(149.95)))
	})

	t.Run("from string", func(t *testing.T) {
		m, err := NewMoneyFromString("780.45", KES)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(780.45)))
	})

	t.Run("garbage string rejected", func(t *testing.T) {
		_, err := NewMoneyFromString("seven hundred", KES)
		assert.Error(t, err)
	})

	t.Run("KES shorthands", func(t *testing.T) {
		m := NewMoneyKES(decimal.NewFromInt(320))
		assert.Equal(t, KES, m.Currency())

		fromString, err := NewMoneyKESFromString("320")
		require.NoError(t, err)
		assert.True(t, m.Equals(fromString))
	})
}

func TestMoneyZeroAndPredicates(t *testing.T) {
	assert.True(t, Zero(USD).IsZero())
	assert.Equal(t, USD, Zero(USD).Currency())
	assert.True(t, ZeroKES().IsZero())
	assert.Equal(t, KES, ZeroKES().Currency())

	assert.True(t, kes(10).IsPositive())
	assert.False(t, ZeroKES().IsPositive())
	assert.True(t, NewMoneyKES(decimal.NewFromInt(-10)).IsNegative())
}

func TestMoneyArithmetic(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		sum, err := kes(1200.25).Add(kes(300.75))
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(1501)))
	})

	t.Run("subtract", func(t *testing.T) {
		diff, err := kes(1500).Subtract(kes(650))
		require.NoError(t, err)
		assert.True(t, diff.Amount().Equal(decimal.NewFromInt(850)))
	})

	t.Run("currency mismatch errors", func(t *testing.T) {
		other, err := NewMoneyFromFloat(100, USD)
		require.NoError(t, err)
		_, err = kes(100).Add(other)
		assert.Error(t, err)
		_, err = kes(100).Subtract(other)
		assert.Error(t, err)
	})

	t.Run("MustAdd panics on mismatch", func(t *testing.T) {
		other, err := NewMoneyFromFloat(1, USD)
		require.NoError(t, err)
		assert.Panics(t, func() { kes(1).MustAdd(other) })
	})
}

func TestMoneyComparisons(t *testing.T) {
	smaller, larger := kes(450), kes(900)

	lt, err := smaller.LessThan(larger)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := larger.GreaterThan(smaller)
	require.NoError(t, err)
	assert.True(t, gt)

	assert.True(t, smaller.Equals(kes(450)))
	assert.False(t, smaller.Equals(larger))
}

func TestMoneyFormatting(t *testing.T) {
	m := kes(1234.5)
	assert.Equal(t, "1234.50 KES", m.String())
	assert.Equal(t, "1234.5000", m.StringFixed(4))
}

func TestMoneyMarshalJSON(t *testing.T) {
	data, err := json.Marshal(kes(99.99))
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"99.99","currency":"KES"}`, string(data))
}
