package trade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugmart/storefront/internal/domain/shared"
)

func TestParseOrderStatus(t *testing.T) {
	for _, in := range []string{"shipped", " SHIPPED ", "Shipped"} {
		s, err := ParseOrderStatus(in)
		require.NoError(t, err)
		assert.Equal(t, OrderStatusShipped, s)
	}
	_, err := ParseOrderStatus("LOST")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestOrderStatus_Label(t *testing.T) {
	assert.Equal(t, "Pending", OrderStatusPending.Label())
	assert.Equal(t, "Cancelled", OrderStatusCancelled.Label())
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "5 Mar 2024", FormatDate(time.Date(2024, 3, 5, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, "", FormatDate(time.Time{}))
}

func TestNewOrder_Validate(t *testing.T) {
	valid := NewOrder{
		AddressID:     "addr-1",
		Items:         []OrderItem{{ProductID: "p1", Price: 1000, Quantity: 1}},
		TransactionID: "PAYPAL-1",
		PaymentMethod: PaymentMethodPayPal,
		TotalAmount:   1000,
	}
	require.NoError(t, valid.Validate())

	noAddr := valid
	noAddr.AddressID = ""
	assert.ErrorIs(t, noAddr.Validate(), shared.ErrInvalidInput)

	noItems := valid
	noItems.Items = nil
	assert.EqualError(t, noItems.Validate(), "Cart is empty")

	zero := valid
	zero.TotalAmount = 0
	assert.EqualError(t, zero.Validate(), "Invalid total amount")
}
