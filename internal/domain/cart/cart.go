package cart

import (
	"github.com/ugmart/storefront/internal/domain/shared"
	"github.com/ugmart/storefront/internal/domain/shared/valueobject"
)

// Item is one line of a shopper's cart as stored by the backend
type Item struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Category  string  `json:"category,omitempty"`
	Color     *string `json:"color"`
	Size      *string `json:"size"`
	Quantity  int     `json:"quantity"`
}

// LineTotal is price × quantity in shillings
func (i Item) LineTotal() valueobject.Money {
	return valueobject.UGXFromFloat(i.Price).MultiplyByInt(i.Quantity)
}

// Cart is the ordered list of items for one user
type Cart struct {
	Items []Item `json:"items"`
}

// New wraps items returned by the backend
func New(items []Item) *Cart {
	if items == nil {
		items = []Item{}
	}
	return &Cart{Items: items}
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Subtotal is Σ price × quantity
func (c *Cart) Subtotal() valueobject.Money {
	total := valueobject.Zero(valueobject.UGX)
	for _, item := range c.Items {
		total, _ = total.Add(item.LineTotal())
	}
	return total
}

// ItemCount is the total number of units across lines
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Find returns the line with the given id
func (c *Cart) Find(id string) (*Item, bool) {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i], true
		}
	}
	return nil, false
}

// Upsert replaces the line with the same id or appends it
func (c *Cart) Upsert(item Item) {
	if existing, ok := c.Find(item.ID); ok {
		*existing = item
		return
	}
	c.Items = append(c.Items, item)
}

// ApplyRemoval reconciles the result of a remove call: the backend answers
// with the decremented line, or nothing once the line is gone.
func (c *Cart) ApplyRemoval(id string, updated *Item) {
	if updated != nil {
		c.Upsert(*updated)
		return
	}
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// SetQuantity updates the local view of a line. It reports false when the
// line is not in the cart.
func (c *Cart) SetQuantity(id string, quantity int) (bool, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return false, err
	}
	item, ok := c.Find(id)
	if !ok {
		return false, nil
	}
	item.Quantity = quantity
	return true, nil
}

// ValidateQuantity enforces the minimum line quantity
func ValidateQuantity(quantity int) error {
	if quantity < 1 {
		return shared.InvalidInput("Quantity must be at least 1")
	}
	return nil
}

// AddItem is the add-to-cart command
type AddItem struct {
	ProductID string
	Quantity  int
	Color     *string
	Size      *string
}

// Validate checks the command
func (a AddItem) Validate() error {
	if a.ProductID == "" {
		return shared.InvalidInput("Product is required")
	}
	return ValidateQuantity(a.Quantity)
}
