package domain

import "time"

type DiscountKind string

const (
	DiscountPercentOff     DiscountKind = "percent_off"
	DiscountFixedAmountOff DiscountKind = "fixed_amount_off"
	DiscountFreeShipping   DiscountKind = "free_shipping"
)

type DiscountStatus string

const (
	DiscountStatusActive   DiscountStatus = "active"
	DiscountStatusInactive DiscountStatus = "inactive"
)

// Discount as served by the order API. Exactly one of Percent / FixedAmount
// is meaningful, selected by Kind; a FreeShipping discount contributes zero
// monetary discount and waives the shipping fee instead.
type Discount struct {
	ID            int64          `json:"id"`
	Kind          DiscountKind   `json:"kind"`
	Percent       int            `json:"percent,omitempty"`
	FixedAmount   int64          `json:"fixed_amount,omitempty"`
	MinOrderValue int64          `json:"min_order_value"`
	ValidFrom     *time.Time     `json:"valid_from,omitempty"`
	ValidUntil    *time.Time     `json:"valid_until,omitempty"`
	Status        DiscountStatus `json:"status"`
}
