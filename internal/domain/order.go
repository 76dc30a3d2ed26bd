package domain

import "time"

// Shipping methods accepted at checkout, with their flat rates.
const (
	ShippingStandard  = "standard"
	ShippingExpress   = "express"
	ShippingOvernight = "overnight"
)

// Order is a client-local receipt created when checkout completes. It is
// immutable thereafter and gates which products the user may review.
type Order struct {
	ID             string         `json:"_id"`
	Lines          []DetailedLine `json:"items"`
	Subtotal       float64        `json:"subtotal"`
	Shipping       float64        `json:"shipping"`
	Total          float64        `json:"total"`
	Currency       string         `json:"currency"`
	PaymentMethod  string         `json:"paymentMethod"`
	ShippingMethod string         `json:"shippingMethod"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Contains reports whether the order includes the given product.
func (o *Order) Contains(productID string) bool {
	for _, line := range o.Lines {
		if line.Product.ID == productID {
			return true
		}
	}
	return false
}
