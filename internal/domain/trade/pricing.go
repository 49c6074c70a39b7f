package trade

import (
	"github.com/shopspring/decimal"

	"github.com/ugmart/storefront/internal/domain/cart"
	"github.com/ugmart/storefront/internal/domain/shared"
	"github.com/ugmart/storefront/internal/domain/shared/valueobject"
)

// Quote is the checkout summary for a cart
type Quote struct {
	Subtotal        valueobject.Money `json:"subtotal"`
	Shipping        valueobject.Money `json:"shipping"`
	DiscountPercent decimal.Decimal   `json:"discountPercent"`
	Discount        valueobject.Money `json:"discount"`
	Total           valueobject.Money `json:"total"`
	TotalUSD        valueobject.Money `json:"totalUsd"`
	UGXPerUSD       decimal.Decimal   `json:"ugxPerUsd"`
}

// Price computes the quote. Shipping is free; the discount is a percentage
// of the subtotal and the PayPal charge is the total converted to dollars.
func Price(c *cart.Cart, discountPercent, ugxPerUSD decimal.Decimal) (*Quote, error) {
	if discountPercent.IsNegative() || discountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.InvalidInput("Invalid discount percentage")
	}
	subtotal := c.Subtotal()
	shipping := valueobject.Zero(valueobject.UGX)
	discount := subtotal.Percent(discountPercent)

	total, err := subtotal.Subtract(discount)
	if err != nil {
		return nil, err
	}
	total, err = total.Add(shipping)
	if err != nil {
		return nil, err
	}
	usd, err := total.Convert(valueobject.USD, ugxPerUSD)
	if err != nil {
		return nil, err
	}

	return &Quote{
		Subtotal:        subtotal,
		Shipping:        shipping,
		DiscountPercent: discountPercent,
		Discount:        discount,
		Total:           total,
		TotalUSD:        usd,
		UGXPerUSD:       ugxPerUSD,
	}, nil
}

// ItemsFromCart freezes cart lines into order lines
func ItemsFromCart(c *cart.Cart) []OrderItem {
	items := make([]OrderItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Image:     it.Image,
			Color:     it.Color,
			Size:      it.Size,
			Quantity:  it.Quantity,
		})
	}
	return items
}
