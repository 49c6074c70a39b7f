package trade

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugmart/storefront/internal/domain/cart"
	"github.com/ugmart/storefront/internal/domain/shared"
	"github.com/ugmart/storefront/internal/domain/shared/valueobject"
)

func TestPrice(t *testing.T) {
	rate := decimal.NewFromInt(3600)
	c := cart.New([]cart.Item{
		{ID: "a", ProductID: "p1", Price: 50000, Quantity: 2},
		{ID: "b", ProductID: "p2", Price: 8000, Quantity: 1},
	})

	tests := []struct {
		name     string
		pct      decimal.Decimal
		discount float64
		total    float64
		usd      string
	}{
		{"no coupon", decimal.Zero, 0, 108000, "30.00"},
		{"ten percent", decimal.NewFromInt(10), 10800, 97200, "27.00"},
		{"fractional", decimal.RequireFromString("12.5"), 13500, 94500, "26.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Price(c, tt.pct, rate)
			require.NoError(t, err)
			assert.True(t, q.Subtotal.Equals(valueobject.UGXFromFloat(108000)))
			assert.True(t, q.Shipping.IsZero())
			assert.True(t, q.Discount.Equals(valueobject.UGXFromFloat(tt.discount)), q.Discount.String())
			assert.True(t, q.Total.Equals(valueobject.UGXFromFloat(tt.total)), q.Total.String())
			assert.Equal(t, tt.usd, q.TotalUSD.StringFixed(2))
			assert.Equal(t, valueobject.USD, q.TotalUSD.Currency())
		})
	}
}

func TestPrice_Invalid(t *testing.T) {
	c := cart.New(nil)
	_, err := Price(c, decimal.NewFromInt(101), decimal.NewFromInt(3600))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = Price(c, decimal.Zero, decimal.Zero)
	assert.ErrorIs(t, err, valueobject.ErrInvalidRate)
}

func TestItemsFromCart(t *testing.T) {
	size := "M"
	c := cart.New([]cart.Item{{ID: "a", ProductID: "p1", Name: "Shirt", Price: 20000, Size: &size, Quantity: 2}})
	items := ItemsFromCart(c)
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, "M", *items[0].Size)
	assert.Empty(t, items[0].ID)
}
