package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	t.Run("normalizes case", func(t *testing.T) {
		c, err := ParseCurrency(" eur ")
		require.NoError(t, err)
		assert.Equal(t, Currency("EUR"), c)
	})

	t.Run("empty falls back to default", func(t *testing.T) {
		c, err := ParseCurrency("")
		require.NoError(t, err)
		assert.Equal(t, DefaultCurrency, c)
	})

	t.Run("rejects unknown code", func(t *testing.T) {
		_, err := ParseCurrency("ZZZ")
		assert.Error(t, err)
	})
}

func TestMoney_Add(t *testing.T) {
	a := NewMoney(decimal.NewFromInt(10), "USD")
	b := NewMoney(decimal.RequireFromString("2.5"), "USD")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount.Equal(decimal.RequireFromString("12.5")))

	_, err = a.Add(NewMoney(decimal.NewFromInt(1), "EUR"))
	assert.Error(t, err)
}
