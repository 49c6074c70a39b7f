package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugmart/storefront/internal/domain/shared"
	"github.com/ugmart/storefront/internal/domain/shared/valueobject"
)

func sampleCart() *Cart {
	return New([]Item{
		{ID: "a", ProductID: "p1", Name: "Gomesi", Price: 85000, Quantity: 1},
		{ID: "b", ProductID: "p2", Name: "Sandals", Price: 12500, Quantity: 2},
	})
}

func TestCart_Subtotal(t *testing.T) {
	c := sampleCart()
	assert.True(t, c.Subtotal().Equals(valueobject.UGXFromFloat(110000)))
	assert.Equal(t, 3, c.ItemCount())

	empty := New(nil)
	assert.True(t, empty.IsEmpty())
	assert.True(t, empty.Subtotal().IsZero())
	assert.NotNil(t, empty.Items)
}

func TestCart_Upsert(t *testing.T) {
	c := sampleCart()
	c.Upsert(Item{ID: "b", ProductID: "p2", Price: 12500, Quantity: 3})
	assert.Len(t, c.Items, 2)
	assert.Equal(t, 3, c.Items[1].Quantity)

	c.Upsert(Item{ID: "c", ProductID: "p3", Price: 1000, Quantity: 1})
	assert.Len(t, c.Items, 3)
	assert.Equal(t, "c", c.Items[2].ID)
}

func TestCart_ApplyRemoval(t *testing.T) {
	t.Run("decremented line replaced", func(t *testing.T) {
		c := sampleCart()
		c.ApplyRemoval("b", &Item{ID: "b", ProductID: "p2", Price: 12500, Quantity: 1})
		item, ok := c.Find("b")
		require.True(t, ok)
		assert.Equal(t, 1, item.Quantity)
	})

	t.Run("nil removes the line", func(t *testing.T) {
		c := sampleCart()
		c.ApplyRemoval("a", nil)
		assert.Len(t, c.Items, 1)
		_, ok := c.Find("a")
		assert.False(t, ok)
	})

	t.Run("unknown id ignored", func(t *testing.T) {
		c := sampleCart()
		c.ApplyRemoval("zzz", nil)
		assert.Len(t, c.Items, 2)
	})
}

func TestCart_SetQuantity(t *testing.T) {
	c := sampleCart()

	ok, err := c.SetQuantity("a", 4)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, c.Subtotal().Equals(valueobject.UGXFromFloat(365000)))

	ok, err = c.SetQuantity("missing", 2)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.SetQuantity("a", 0)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Equal(t, "Quantity must be at least 1", err.Error())
}

func TestAddItem_Validate(t *testing.T) {
	assert.NoError(t, AddItem{ProductID: "p1", Quantity: 1}.Validate())
	assert.ErrorIs(t, AddItem{Quantity: 1}.Validate(), shared.ErrInvalidInput)
	assert.ErrorIs(t, AddItem{ProductID: "p1"}.Validate(), shared.ErrInvalidInput)
}
