package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45")
		require.NoError(t, err)
		assert.Equal(t, "123.45", m.String())
	})

	t.Run("rounds half up to two places", func(t *testing.T) {
		m, err := NewMoneyFromString("10.005")
		require.NoError(t, err)
		assert.Equal(t, "10.01", m.String())

		m, err = NewMoneyFromString("10.004")
		require.NoError(t, err)
		assert.Equal(t, "10.00", m.String())
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number")
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := MustMoney("100.10")
	b := MustMoney("0.20")

	assert.Equal(t, "100.30", a.Add(b).String())
	assert.Equal(t, "99.90", a.Subtract(b).String())
	assert.Equal(t, "-99.90", b.Subtract(a).String())
	assert.Equal(t, "99.90", b.Subtract(a).Abs().String())
}

func TestMoney_Multiply(t *testing.T) {
	t.Run("quantity times price", func(t *testing.T) {
		price := MustMoney("100")
		assert.Equal(t, "300.00", price.Multiply(decimal.NewFromInt(3)).String())
	})

	t.Run("fractional quantity rounds half up", func(t *testing.T) {
		price := MustMoney("0.15")
		// 0.15 * 0.5 = 0.075
		assert.Equal(t, "0.08", price.Multiply(decimal.RequireFromString("0.5")).String())
	})

	t.Run("no binary float drift", func(t *testing.T) {
		price := MustMoney("0.10")
		total := ZeroMoney()
		for range 10 {
			total = total.Add(price)
		}
		assert.True(t, total.Equals(MustMoney("1.00")))
	})
}

func TestMoney_Percentage(t *testing.T) {
	net := MustMoney("250.00")
	assert.Equal(t, "52.50", net.Percentage(decimal.NewFromInt(21)).String())
	assert.Equal(t, "26.25", net.Percentage(decimal.RequireFromString("10.5")).String())
	assert.True(t, net.Percentage(decimal.Zero).IsZero())
}

func TestMoney_Comparisons(t *testing.T) {
	small := MustMoney("10")
	big := MustMoney("20")

	assert.True(t, small.LessThan(big))
	assert.True(t, big.GreaterThan(small))
	assert.Equal(t, -1, small.Cmp(big))
	assert.Equal(t, 0, small.Cmp(MustMoney("10.00")))
	assert.True(t, small.Equals(NewMoney(decimal.RequireFromString("10.001"))))
}

func TestMoney_JSON(t *testing.T) {
	t.Run("marshals as two decimal string", func(t *testing.T) {
		data, err := json.Marshal(MustMoney("290"))
		require.NoError(t, err)
		assert.Equal(t, `"290.00"`, string(data))
	})

	t.Run("unmarshals strings and numbers", func(t *testing.T) {
		var m Money
		require.NoError(t, json.Unmarshal([]byte(`"12.345"`), &m))
		assert.Equal(t, "12.35", m.String())

		require.NoError(t, json.Unmarshal([]byte(`7.5`), &m))
		assert.Equal(t, "7.50", m.String())
	})

	t.Run("rejects garbage", func(t *testing.T) {
		var m Money
		assert.Error(t, json.Unmarshal([]byte(`"abc"`), &m))
		assert.Error(t, json.Unmarshal([]byte(`{}`), &m))
	})
}

func TestMoney_ValueScan(t *testing.T) {
	v, err := MustMoney("42.1").Value()
	require.NoError(t, err)
	assert.Equal(t, "42.10", v)

	var m Money
	require.NoError(t, m.Scan("42.10"))
	assert.Equal(t, "42.10", m.String())

	require.NoError(t, m.Scan([]byte("3.5")))
	assert.Equal(t, "3.50", m.String())
}

func TestSumMoney(t *testing.T) {
	total := SumMoney(MustMoney("250"), MustMoney("40"))
	assert.Equal(t, "290.00", total.String())
	assert.True(t, SumMoney().IsZero())
}

func TestHasAtMostPlaces(t *testing.T) {
	assert.True(t, HasAtMostPlaces(decimal.RequireFromString("50.25"), 2))
	assert.True(t, HasAtMostPlaces(decimal.RequireFromString("50.250"), 2))
	assert.False(t, HasAtMostPlaces(decimal.RequireFromString("50.255"), 2))
	assert.True(t, HasAtMostPlaces(decimal.RequireFromString("1.125"), 3))
}
