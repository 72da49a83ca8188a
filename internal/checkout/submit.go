package checkout

import (
	"context"
	"log"

	"github.com/duongtrinhxuan/foodorder-checkout/internal/api"
	"github.com/duongtrinhxuan/foodorder-checkout/internal/domain"
	"github.com/duongtrinhxuan/foodorder-checkout/internal/journal"
	"github.com/duongtrinhxuan/foodorder-checkout/internal/pricing"
	"github.com/google/uuid"
)

// Step identifies one stage of the submission sequence, in execution order.
type Step string

const (
	StepCreateOrder   Step = "create_order"
	StepCreateDetails Step = "create_order_details"
	StepCreatePayment Step = "create_payment"
	StepClearCart     Step = "clear_cart"
)

// Submit runs the order-assembly sequence: order, one detail per cart line,
// payment, then per-line cart deactivation. Calls run strictly one after
// another; there is no rollback. A failure after the order exists comes back
// as *PartialSubmissionError so the caller knows what was left behind.
//
// Only one submission may be in flight at a time; a second call while one is
// running fails fast with ErrSubmissionInFlight. Once started the sequence
// runs to completion or failure, there is no cancellation beyond ctx.
func (s *Service) Submit(ctx context.Context, cartID, userID int64, sel *domain.SelectionState) (int64, error) {
	select {
	case s.submitting <- struct{}{}:
		defer func() { <-s.submitting }()
	default:
		return 0, ErrSubmissionInFlight
	}

	if sel == nil || sel.AddressID == nil {
		return 0, ErrNoAddress
	}

	lines, err := s.api.GetCartItems(ctx, cartID)
	if err != nil {
		return 0, &NetworkError{Op: "get cart items", Err: err}
	}
	if len(lines) == 0 {
		return 0, ErrEmptyCart
	}

	// the restaurant comes from the first line's product, as the cart
	// screen only ever holds one restaurant's items
	restaurantID := lines[0].Product.RestaurantID
	if restaurantID == 0 {
		return 0, ErrNoRestaurant
	}

	now := s.now()
	totals := pricing.ComputeTotals(lines, sel.Discount, now)

	// the discount is referenced on the order only if it still holds at
	// submission time; selection-time validity may have lapsed
	var discountID *int64
	if pricing.Valid(sel.Discount, totals.Subtotal, now) {
		discountID = &sel.Discount.ID
	}

	method := sel.PaymentMethod
	if method == "" {
		method = domain.PaymentMethodCash
	}

	subID := uuid.New().String()
	s.journalCreate(ctx, subID, userID, cartID)

	order, err := s.api.CreateOrder(ctx, &api.CreateOrderRequest{
		TotalPrice:   totals.Subtotal - totals.DiscountAmount,
		ShippingFee:  totals.ShippingFee,
		Note:         sel.OrderNote,
		UserID:       userID,
		RestaurantID: restaurantID,
		AddressID:    *sel.AddressID,
		DiscountID:   discountID,
	})
	if err != nil {
		s.journalFinish(ctx, subID, journal.StatusFailed)
		return 0, &NetworkError{Op: "create order", Err: err}
	}
	s.journalOrderID(ctx, subID, order.ID)
	s.journalStep(ctx, subID, StepCreateOrder)
	completed := []Step{StepCreateOrder}

	for _, line := range lines {
		note := sel.LineNotes[line.ID]
		if note == "" {
			note = "no note"
		}
		_, err := s.api.CreateOrderDetail(ctx, &api.CreateOrderDetailRequest{
			Quantity:  line.Quantity,
			Note:      note,
			ProductID: line.Product.ID,
			OrderID:   order.ID,
		})
		if err != nil {
			return 0, s.partial(ctx, subID, order.ID, StepCreateDetails, completed, err)
		}
	}
	s.journalStep(ctx, subID, StepCreateDetails)
	completed = append(completed, StepCreateDetails)

	if _, err := s.api.CreatePayment(ctx, &api.CreatePaymentRequest{
		Method:  method,
		Status:  domain.PaymentStatusPending,
		OrderID: order.ID,
	}); err != nil {
		return 0, s.partial(ctx, subID, order.ID, StepCreatePayment, completed, err)
	}
	s.journalStep(ctx, subID, StepCreatePayment)
	completed = append(completed, StepCreatePayment)

	for _, line := range lines {
		if err := s.api.DeleteCartItem(ctx, line.ID); err != nil {
			return 0, s.partial(ctx, subID, order.ID, StepClearCart, completed, err)
		}
	}
	s.journalStep(ctx, subID, StepClearCart)
	s.journalFinish(ctx, subID, journal.StatusCompleted)

	if s.events != nil {
		if err := s.events.OrderSubmitted(ctx, order); err != nil {
			log.Printf("order submitted event publish error: %v", err)
		}
	}
	if s.OnCartChanged != nil {
		s.OnCartChanged(ctx, cartID)
	}

	return order.ID, nil
}

func (s *Service) partial(ctx context.Context, subID string, orderID int64, failed Step, completed []Step, err error) error {
	s.journalFinish(ctx, subID, journal.StatusPartial)
	return &PartialSubmissionError{
		OrderID:    orderID,
		FailedStep: failed,
		Completed:  completed,
		Err:        err,
	}
}
