package domain

import "time"

type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "cash"
	PaymentMethodMomo    PaymentMethod = "momo"
	PaymentMethodBanking PaymentMethod = "banking"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Order as persisted by the order API. TotalPrice is subtotal minus discount;
// the shipping fee is kept as a separate field, not folded into TotalPrice.
type Order struct {
	ID           int64     `json:"id"`
	TotalPrice   int64     `json:"total_price"`
	ShippingFee  int64     `json:"shipping_fee"`
	Note         string    `json:"note,omitempty"`
	UserID       int64     `json:"user_id"`
	RestaurantID int64     `json:"restaurant_id"`
	AddressID    int64     `json:"address_id"`
	DiscountID   *int64    `json:"discount_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// OrderDetail is one line of a persisted order, one per cart line.
type OrderDetail struct {
	ID        int64  `json:"id"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note,omitempty"`
	ProductID int64  `json:"product_id"`
	OrderID   int64  `json:"order_id"`
}

// Payment is the single payment record attached to an order.
type Payment struct {
	ID      int64         `json:"id"`
	Method  PaymentMethod `json:"method"`
	Status  PaymentStatus `json:"status"`
	OrderID int64         `json:"order_id"`
}

type UserAddress struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Street    string `json:"street"`
	Ward      string `json:"ward"`
	District  string `json:"district"`
	City      string `json:"city"`
	Phone     string `json:"phone"`
	IsDefault bool   `json:"is_default"`
}
