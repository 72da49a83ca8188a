package domain

// Product carries the subset of product data the checkout flow needs.
type Product struct {
	ID           int64 `json:"id"`
	Price        int64 `json:"price"`
	RestaurantID int64 `json:"restaurant_id"`
}

// CartLine is one entry of the user's cart as served by the order API.
// UnitPrice is expected to equal Product.Price * Quantity; the API owns
// that invariant, checkout only consumes it.
type CartLine struct {
	ID        int64   `json:"id"`
	Quantity  int     `json:"quantity"`
	UnitPrice int64   `json:"unit_price"`
	IsActive  bool    `json:"is_active"`
	Product   Product `json:"product"`
}

// Subtotal sums the unit prices of the given lines.
func Subtotal(lines []CartLine) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.UnitPrice
	}
	return sum
}

// PricingResult is the totals breakdown shown to the user. It is derived,
// never persisted, and recomputed from cart lines + selection on every read.
type PricingResult struct {
	Subtotal       int64 `json:"subtotal"`
	DiscountAmount int64 `json:"discount_amount"`
	ShippingFee    int64 `json:"shipping_fee"`
	Total          int64 `json:"total"`
}

// SelectionState holds the user's in-progress checkout choices. It is owned
// by the checkout session and discarded on submit success or screen exit.
type SelectionState struct {
	AddressID     *int64
	Discount      *Discount
	PaymentMethod PaymentMethod
	LineNotes     map[int64]string
	OrderNote     string
}
