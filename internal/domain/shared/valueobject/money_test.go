package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	_, err := NewMoney(decimal.NewFromInt(1), "")
	assert.ErrorIs(t, err, ErrEmptyCurrency)

	m, err := NewMoneyFromString("12500.50", UGX)
	require.NoError(t, err)
	assert.Equal(t, "12500.50 UGX", m.String())

	_, err = NewMoneyFromString("abc", UGX)
	assert.Error(t, err)
}

func TestMoney_Arithmetic(t *testing.T) {
	a := UGXFromFloat(15000)
	b := UGXFromFloat(2500)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Equals(UGXFromFloat(17500)))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Equals(UGXFromFloat(12500)))

	assert.True(t, b.MultiplyByInt(3).Equals(UGXFromFloat(7500)))
	assert.True(t, a.Percent(decimal.NewFromInt(10)).Equals(UGXFromFloat(1500)))

	_, err = a.Add(Zero(USD))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = a.Divide(decimal.Zero)
	assert.ErrorIs(t, err, ErrDivideByZero)

	gt, err := a.GreaterThan(b)
	require.NoError(t, err)
	assert.True(t, gt)
}

func TestMoney_Convert(t *testing.T) {
	tests := []struct {
		name string
		ugx  float64
		rate int64
		want string
	}{
		{"exact", 36000, 3600, "10.00"},
		{"rounds half up", 18, 3600, "0.01"},
		{"repeating", 100000, 3600, "27.78"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usd, err := UGXFromFloat(tt.ugx).Convert(USD, decimal.NewFromInt(tt.rate))
			require.NoError(t, err)
			assert.Equal(t, USD, usd.Currency())
			assert.Equal(t, tt.want, usd.StringFixed(2))
		})
	}

	_, err := UGXFromFloat(1).Convert(USD, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(UGXFromFloat(9900))
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"9900","currency":"UGX"}`, string(data))

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"27.78","currency":"USD"}`), &m))
	assert.Equal(t, "27.78 USD", m.String())

	assert.Error(t, json.Unmarshal([]byte(`{"amount":"1","currency":""}`), &m))
}

func TestMoney_Scan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan([]byte("4500.25")))
	assert.Equal(t, "4500.25 UGX", m.String())

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	assert.Error(t, m.Scan(true))

	v, err := UGXFromFloat(10).Value()
	require.NoError(t, err)
	assert.Equal(t, "10", v)
}
