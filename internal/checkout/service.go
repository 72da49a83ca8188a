// Package checkout turns a priced cart plus the user's selections into a
// persisted order. Pricing stays in internal/pricing; this package owns the
// selection flow and the multi-call submission sequence.
package checkout

import (
	"context"
	"log"
	"time"

	"github.com/duongtrinhxuan/foodorder-checkout/internal/api"
	"github.com/duongtrinhxuan/foodorder-checkout/internal/domain"
	"github.com/duongtrinhxuan/foodorder-checkout/internal/journal"
	"github.com/duongtrinhxuan/foodorder-checkout/internal/pricing"
)

// OrderAPI is the slice of the external order API this service consumes.
type OrderAPI interface {
	GetCartItems(ctx context.Context, cartID int64) ([]domain.CartLine, error)
	GetUserAddresses(ctx context.Context, userID int64) ([]domain.UserAddress, error)
	CreateOrder(ctx context.Context, req *api.CreateOrderRequest) (*domain.Order, error)
	CreateOrderDetail(ctx context.Context, req *api.CreateOrderDetailRequest) (*domain.OrderDetail, error)
	CreatePayment(ctx context.Context, req *api.CreatePaymentRequest) (*domain.Payment, error)
	DeleteCartItem(ctx context.Context, id int64) error
}

// Catalog filters discounts down to the ones valid for a subtotal right now.
type Catalog interface {
	ListValid(ctx context.Context, subtotal int64, now time.Time) ([]domain.Discount, error)
}

// Publisher announces a fully submitted order. Best effort only.
type Publisher interface {
	OrderSubmitted(ctx context.Context, order *domain.Order) error
}

type Service struct {
	api     OrderAPI
	catalog Catalog
	journal journal.Journal
	events  Publisher

	// OnCartChanged, when set, runs after a successful submission so the
	// caller can refresh its cart badge count.
	OnCartChanged func(ctx context.Context, cartID int64)

	now        func() time.Time
	submitting chan struct{}
}

// NewService wires the checkout flow. journal and events may be nil; both
// are best-effort observers and never fail a submission.
func NewService(orderAPI OrderAPI, catalog Catalog, jnl journal.Journal, events Publisher) *Service {
	return &Service{
		api:        orderAPI,
		catalog:    catalog,
		journal:    jnl,
		events:     events,
		now:        time.Now,
		submitting: make(chan struct{}, 1),
	}
}

// Quote computes the totals the user sees for the current cart and selection.
// It is recomputed on every call: same inputs, same result, no caching.
func (s *Service) Quote(ctx context.Context, cartID int64, sel *domain.SelectionState) (domain.PricingResult, error) {
	lines, err := s.api.GetCartItems(ctx, cartID)
	if err != nil {
		return domain.PricingResult{}, &NetworkError{Op: "get cart items", Err: err}
	}

	var discount *domain.Discount
	if sel != nil {
		discount = sel.Discount
	}
	return pricing.ComputeTotals(lines, discount, s.now()), nil
}

// ListValidDiscounts returns the discounts the user may pick for the cart's
// current subtotal. Validity is re-checked at submit time, because the cart
// or the clock may have moved by then.
func (s *Service) ListValidDiscounts(ctx context.Context, cartID int64) ([]domain.Discount, error) {
	lines, err := s.api.GetCartItems(ctx, cartID)
	if err != nil {
		return nil, &NetworkError{Op: "get cart items", Err: err}
	}

	discounts, err := s.catalog.ListValid(ctx, domain.Subtotal(lines), s.now())
	if err != nil {
		return nil, &NetworkError{Op: "get discounts", Err: err}
	}
	return discounts, nil
}

// Addresses lists the user's saved delivery addresses.
func (s *Service) Addresses(ctx context.Context, userID int64) ([]domain.UserAddress, error) {
	addresses, err := s.api.GetUserAddresses(ctx, userID)
	if err != nil {
		return nil, &NetworkError{Op: "get user addresses", Err: err}
	}
	return addresses, nil
}

func (s *Service) journalCreate(ctx context.Context, id string, userID, cartID int64) {
	if s.journal == nil {
		return
	}
	err := s.journal.Create(ctx, &journal.Submission{ID: id, UserID: userID, CartID: cartID})
	if err != nil {
		log.Printf("journal create error: %v", err)
	}
}

func (s *Service) journalOrderID(ctx context.Context, id string, orderID int64) {
	if s.journal == nil {
		return
	}
	if err := s.journal.SetOrderID(ctx, id, orderID); err != nil {
		log.Printf("journal set order id error: %v", err)
	}
}

func (s *Service) journalStep(ctx context.Context, id string, step Step) {
	if s.journal == nil {
		return
	}
	if err := s.journal.RecordStep(ctx, id, string(step)); err != nil {
		log.Printf("journal record step error: %v", err)
	}
}

func (s *Service) journalFinish(ctx context.Context, id string, status journal.Status) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Finish(ctx, id, status); err != nil {
		log.Printf("journal finish error: %v", err)
	}
}
