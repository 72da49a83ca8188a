package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/duongtrinhxuan/foodorder-checkout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCartItems_FiltersInactive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/carts/42/items", r.URL.Path)

		lines := []domain.CartLine{
			{ID: 1, Quantity: 2, UnitPrice: 50000, IsActive: true},
			{ID: 2, Quantity: 1, UnitPrice: 30000, IsActive: false},
			{ID: 3, Quantity: 1, UnitPrice: 15000, IsActive: true},
		}
		json.NewEncoder(w).Encode(lines)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	lines, err := client.GetCartItems(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, int64(1), lines[0].ID)
	assert.Equal(t, int64(3), lines[1].ID)
}

func TestCreateOrder_PostsFieldsAndParsesID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(65000), req.TotalPrice)
		assert.Equal(t, int64(20000), req.ShippingFee)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(domain.Order{
			ID:          101,
			TotalPrice:  req.TotalPrice,
			ShippingFee: req.ShippingFee,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	order, err := client.CreateOrder(context.Background(), &CreateOrderRequest{
		TotalPrice:   65000,
		ShippingFee:  20000,
		UserID:       5,
		RestaurantID: 3,
		AddressID:    9,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(101), order.ID)
}

func TestDeleteCartItem_SendsDelete(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	err := client.DeleteCartItem(context.Background(), 17)
	require.NoError(t, err)
	assert.Equal(t, "DELETE /api/cart-items/17", gotPath)
}

func TestDo_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.GetDiscounts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	// default settings trip the breaker after 5 straight failures
	for i := 0; i < 6; i++ {
		_, err := client.GetDiscounts(context.Background())
		require.Error(t, err)
	}

	_, err := client.GetDiscounts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
}
