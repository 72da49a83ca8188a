package pricing

import (
	"time"

	"github.com/duongtrinhxuan/foodorder-checkout/internal/domain"
)

// BaseShippingFee is the flat delivery charge in VND, waived only by a
// valid free-shipping discount.
const BaseShippingFee int64 = 20000

// Valid reports whether a discount applies to the given subtotal at the
// given instant. Rules are evaluated in order, short-circuiting on the
// first failure. Absent time bounds impose no constraint.
//
// Both the discount-list filter and the submit path go through this one
// function, so the two call sites can never diverge.
func Valid(d *domain.Discount, subtotal int64, now time.Time) bool {
	if d == nil {
		return false
	}
	if d.Status != domain.DiscountStatusActive {
		return false
	}
	if d.ValidFrom != nil && now.Before(*d.ValidFrom) {
		return false
	}
	if d.ValidUntil != nil && now.After(*d.ValidUntil) {
		return false
	}
	if subtotal < d.MinOrderValue {
		return false
	}
	return true
}

// ComputeTotals derives the totals breakdown from cart lines and an optional
// discount. Pure function: same inputs always produce the same result.
//
// A fixed-amount discount is NOT clamped to the subtotal, so the total can
// go negative when the discount exceeds the order value. That matches the
// observed behavior of the checkout flow this replaces.
func ComputeTotals(lines []domain.CartLine, d *domain.Discount, now time.Time) domain.PricingResult {
	subtotal := domain.Subtotal(lines)

	res := domain.PricingResult{
		Subtotal:    subtotal,
		ShippingFee: BaseShippingFee,
	}

	if !Valid(d, subtotal, now) {
		res.Total = subtotal + res.ShippingFee
		return res
	}

	switch d.Kind {
	case domain.DiscountPercentOff:
		// integer division floors for non-negative operands
		res.DiscountAmount = subtotal * int64(d.Percent) / 100
	case domain.DiscountFixedAmountOff:
		res.DiscountAmount = d.FixedAmount
	case domain.DiscountFreeShipping:
		res.ShippingFee = 0
	}

	res.Total = subtotal - res.DiscountAmount + res.ShippingFee
	return res
}
