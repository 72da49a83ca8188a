// Package api is the HTTP client for the external order API that owns carts,
// discounts, addresses, orders and payments. Checkout treats it as a remote
// collaborator: no retries, no caching, soft-delete semantics for cart items.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/duongtrinhxuan/foodorder-checkout/internal/domain"
	"github.com/sony/gobreaker/v2"
)

type Client struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name: "order-api",
	})
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		cb:      cb,
	}
}

type CreateOrderRequest struct {
	TotalPrice   int64  `json:"total_price"`
	ShippingFee  int64  `json:"shipping_fee"`
	Note         string `json:"note,omitempty"`
	UserID       int64  `json:"user_id"`
	RestaurantID int64  `json:"restaurant_id"`
	AddressID    int64  `json:"address_id"`
	DiscountID   *int64 `json:"discount_id,omitempty"`
}

type CreateOrderDetailRequest struct {
	Quantity  int    `json:"quantity"`
	Note      string `json:"note,omitempty"`
	ProductID int64  `json:"product_id"`
	OrderID   int64  `json:"order_id"`
}

type CreatePaymentRequest struct {
	Method  domain.PaymentMethod `json:"method"`
	Status  domain.PaymentStatus `json:"status"`
	OrderID int64                `json:"order_id"`
}

// GetCartItems returns the active lines of a cart. Soft-deleted entries are
// filtered out here so callers only ever see live lines.
func (c *Client) GetCartItems(ctx context.Context, cartID int64) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	url := fmt.Sprintf("%s/api/carts/%d/items", c.baseURL, cartID)
	if err := c.do(ctx, http.MethodGet, url, nil, &lines); err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}

	active := make([]domain.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.IsActive {
			active = append(active, l)
		}
	}
	return active, nil
}

// GetDiscounts returns the raw discount list; validity filtering is the
// caller's job.
func (c *Client) GetDiscounts(ctx context.Context) ([]domain.Discount, error) {
	var discounts []domain.Discount
	url := fmt.Sprintf("%s/api/discounts", c.baseURL)
	if err := c.do(ctx, http.MethodGet, url, nil, &discounts); err != nil {
		return nil, fmt.Errorf("get discounts: %w", err)
	}
	return discounts, nil
}

func (c *Client) GetUserAddresses(ctx context.Context, userID int64) ([]domain.UserAddress, error) {
	var addresses []domain.UserAddress
	url := fmt.Sprintf("%s/api/users/%d/addresses", c.baseURL, userID)
	if err := c.do(ctx, http.MethodGet, url, nil, &addresses); err != nil {
		return nil, fmt.Errorf("get user addresses: %w", err)
	}
	return addresses, nil
}

func (c *Client) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*domain.Order, error) {
	var order domain.Order
	url := fmt.Sprintf("%s/api/orders", c.baseURL)
	if err := c.do(ctx, http.MethodPost, url, req, &order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}

func (c *Client) CreateOrderDetail(ctx context.Context, req *CreateOrderDetailRequest) (*domain.OrderDetail, error) {
	var detail domain.OrderDetail
	url := fmt.Sprintf("%s/api/order-details", c.baseURL)
	if err := c.do(ctx, http.MethodPost, url, req, &detail); err != nil {
		return nil, fmt.Errorf("create order detail: %w", err)
	}
	return &detail, nil
}

func (c *Client) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*domain.Payment, error) {
	var payment domain.Payment
	url := fmt.Sprintf("%s/api/payments", c.baseURL)
	if err := c.do(ctx, http.MethodPost, url, req, &payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return &payment, nil
}

// DeleteCartItem deactivates one cart line. The API soft-deletes: the row
// survives with is_active=false.
func (c *Client) DeleteCartItem(ctx context.Context, id int64) error {
	url := fmt.Sprintf("%s/api/cart-items/%d", c.baseURL, id)
	if err := c.do(ctx, http.MethodDelete, url, nil, nil); err != nil {
		return fmt.Errorf("delete cart item %d: %w", id, err)
	}
	return nil
}

// do runs one request through the circuit breaker. An open circuit surfaces
// as an error the same way a failed call does.
func (c *Client) do(ctx context.Context, method, url string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	body, err := c.cb.Execute(func() ([]byte, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("%s %s: status %d: %s", method, url, resp.StatusCode, data)
		}
		return data, nil
	})
	if err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
