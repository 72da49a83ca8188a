package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/duongtrinhxuan/foodorder-checkout/internal/api"
	"github.com/duongtrinhxuan/foodorder-checkout/internal/domain"
	"github.com/duongtrinhxuan/foodorder-checkout/internal/journal"
)

// MockOrderAPI implements OrderAPI and records every call in order.
type MockOrderAPI struct {
	m sync.Mutex

	Lines     []domain.CartLine
	LinesErr  error
	Addresses []domain.UserAddress

	OrderErr   error
	DetailErr  error
	PaymentErr error
	// DeleteErrOn fails DeleteCartItem for that specific line id
	DeleteErrOn int64
	DeleteErr   error

	NextOrderID int64

	Calls        []string
	CreatedOrder *api.CreateOrderRequest
	Details      []*api.CreateOrderDetailRequest
	Payment      *api.CreatePaymentRequest
	Deleted      []int64

	// Gate, when set, is received from inside GetCartItems so a test can
	// hold a submission mid-flight
	Gate chan struct{}
}

func (m *MockOrderAPI) record(call string) {
	m.m.Lock()
	defer m.m.Unlock()
	m.Calls = append(m.Calls, call)
}

func (m *MockOrderAPI) GetCartItems(context.Context, int64) ([]domain.CartLine, error) {
	m.record("get_cart_items")
	if m.Gate != nil {
		<-m.Gate
	}
	if m.LinesErr != nil {
		return nil, m.LinesErr
	}
	return m.Lines, nil
}

func (m *MockOrderAPI) GetUserAddresses(context.Context, int64) ([]domain.UserAddress, error) {
	m.record("get_user_addresses")
	return m.Addresses, nil
}

func (m *MockOrderAPI) CreateOrder(_ context.Context, req *api.CreateOrderRequest) (*domain.Order, error) {
	m.record("create_order")
	if m.OrderErr != nil {
		return nil, m.OrderErr
	}
	m.CreatedOrder = req
	id := m.NextOrderID
	if id == 0 {
		id = 101
	}
	return &domain.Order{
		ID:           id,
		TotalPrice:   req.TotalPrice,
		ShippingFee:  req.ShippingFee,
		Note:         req.Note,
		UserID:       req.UserID,
		RestaurantID: req.RestaurantID,
		AddressID:    req.AddressID,
		DiscountID:   req.DiscountID,
	}, nil
}

func (m *MockOrderAPI) CreateOrderDetail(_ context.Context, req *api.CreateOrderDetailRequest) (*domain.OrderDetail, error) {
	m.record("create_order_detail")
	if m.DetailErr != nil {
		return nil, m.DetailErr
	}
	m.Details = append(m.Details, req)
	return &domain.OrderDetail{ID: int64(len(m.Details)), Quantity: req.Quantity, ProductID: req.ProductID, OrderID: req.OrderID}, nil
}

func (m *MockOrderAPI) CreatePayment(_ context.Context, req *api.CreatePaymentRequest) (*domain.Payment, error) {
	m.record("create_payment")
	if m.PaymentErr != nil {
		return nil, m.PaymentErr
	}
	m.Payment = req
	return &domain.Payment{ID: 1, Method: req.Method, Status: req.Status, OrderID: req.OrderID}, nil
}

func (m *MockOrderAPI) DeleteCartItem(_ context.Context, id int64) error {
	m.record("delete_cart_item")
	if m.DeleteErrOn != 0 && id == m.DeleteErrOn {
		return m.DeleteErr
	}
	m.Deleted = append(m.Deleted, id)
	return nil
}

// MockCatalog implements Catalog.
type MockCatalog struct {
	Discounts []domain.Discount
	Err       error
	Subtotal  int64 // captures the subtotal passed in
}

func (m *MockCatalog) ListValid(_ context.Context, subtotal int64, _ time.Time) ([]domain.Discount, error) {
	m.Subtotal = subtotal
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Discounts, nil
}

// MockJournal implements journal.Journal in memory.
type MockJournal struct {
	Created  *journal.Submission
	OrderID  *int64
	Steps    []string
	Statuses []journal.Status
	Err      error
}

func (m *MockJournal) Create(_ context.Context, sub *journal.Submission) error {
	m.Created = sub
	return m.Err
}

func (m *MockJournal) SetOrderID(_ context.Context, _ string, orderID int64) error {
	m.OrderID = &orderID
	return m.Err
}

func (m *MockJournal) RecordStep(_ context.Context, _ string, step string) error {
	m.Steps = append(m.Steps, step)
	return m.Err
}

func (m *MockJournal) Finish(_ context.Context, _ string, status journal.Status) error {
	m.Statuses = append(m.Statuses, status)
	return m.Err
}

func (m *MockJournal) Get(context.Context, string) (*journal.Submission, []journal.StepRecord, error) {
	return nil, nil, journal.ErrSubmissionNotFound
}

func (m *MockJournal) Close() error {
	return nil
}

// MockPublisher implements Publisher.
type MockPublisher struct {
	Published []*domain.Order
	Err       error
}

func (m *MockPublisher) OrderSubmitted(_ context.Context, order *domain.Order) error {
	if m.Err != nil {
		return m.Err
	}
	m.Published = append(m.Published, order)
	return nil
}
