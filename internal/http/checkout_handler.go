package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/duongtrinhxuan/foodorder-checkout/internal/checkout"
	"github.com/duongtrinhxuan/foodorder-checkout/internal/discounts"
	"github.com/duongtrinhxuan/foodorder-checkout/internal/domain"
)

// CheckoutService is what the handlers need from the checkout flow.
// Consumers define this interface, not the service implementation.
type CheckoutService interface {
	Quote(ctx context.Context, cartID int64, sel *domain.SelectionState) (domain.PricingResult, error)
	ListValidDiscounts(ctx context.Context, cartID int64) ([]domain.Discount, error)
	Addresses(ctx context.Context, userID int64) ([]domain.UserAddress, error)
	Submit(ctx context.Context, cartID, userID int64, sel *domain.SelectionState) (int64, error)
}

// DiscountResolver resolves a selected discount id back to the full discount.
type DiscountResolver interface {
	Get(ctx context.Context, id int64) (*domain.Discount, error)
}

type CheckoutHandler struct {
	svc       CheckoutService
	discounts DiscountResolver
	timeout   time.Duration
}

func NewCheckoutHandler(svc CheckoutService, resolver DiscountResolver, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		svc:       svc,
		discounts: resolver,
		timeout:   timeout,
	}
}

type SubmitRequestDTO struct {
	CartID        int64            `json:"cart_id"`
	AddressID     *int64           `json:"address_id"`
	DiscountID    *int64           `json:"discount_id,omitempty"`
	PaymentMethod string           `json:"payment_method"`
	LineNotes     map[int64]string `json:"line_notes,omitempty"`
	OrderNote     string           `json:"order_note,omitempty"`
}

type SubmitResponseDTO struct {
	OrderID int64 `json:"order_id"`
}

type ErrorResponse struct {
	Error          string   `json:"error"`
	Code           string   `json:"code,omitempty"`
	OrderID        int64    `json:"order_id,omitempty"`
	CompletedSteps []string `json:"completed_steps,omitempty"`
}

func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	cartID, ok := queryInt64(r, "cart_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_cart_id", "cart_id must be a positive integer")
		return
	}

	sel := &domain.SelectionState{}
	if raw := r.URL.Query().Get("discount_id"); raw != "" {
		discountID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || discountID <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_discount_id", "discount_id must be a positive integer")
			return
		}
		d, err := h.discounts.Get(ctx, discountID)
		if errors.Is(err, discounts.ErrDiscountNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "discount not found")
			return
		}
		if err != nil {
			handleServiceError(w, err)
			return
		}
		sel.Discount = d
	}

	res, err := h.svc.Quote(ctx, cartID, sel)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, res)
}

func (h *CheckoutHandler) ListDiscounts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	cartID, ok := queryInt64(r, "cart_id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_cart_id", "cart_id must be a positive integer")
		return
	}

	valid, err := h.svc.ListValidDiscounts(ctx, cartID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, valid)
}

func (h *CheckoutHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	addresses, err := h.svc.Addresses(ctx, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, addresses)
}

func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req SubmitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.CartID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_cart_id", "cart_id must be a positive integer")
		return
	}
	if req.PaymentMethod != "" && !validPaymentMethod(req.PaymentMethod) {
		respondError(w, http.StatusBadRequest, "invalid_payment_method", "unknown payment method")
		return
	}

	sel := &domain.SelectionState{
		AddressID:     req.AddressID,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		LineNotes:     req.LineNotes,
		OrderNote:     req.OrderNote,
	}
	if req.DiscountID != nil {
		d, err := h.discounts.Get(ctx, *req.DiscountID)
		if errors.Is(err, discounts.ErrDiscountNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "discount not found")
			return
		}
		if err != nil {
			handleServiceError(w, err)
			return
		}
		sel.Discount = d
	}

	orderID, err := h.svc.Submit(ctx, req.CartID, userID, sel)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, SubmitResponseDTO{OrderID: orderID})
}

func validPaymentMethod(m string) bool {
	switch domain.PaymentMethod(m) {
	case domain.PaymentMethodCash, domain.PaymentMethodMomo, domain.PaymentMethodBanking:
		return true
	}
	return false
}

func queryInt64(r *http.Request, key string) (int64, bool) {
	v, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func getUserIDFromContext(ctx context.Context) int64 {
	if userID, ok := ctx.Value("user_id").(int64); ok {
		return userID
	}
	return 0
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps the checkout error taxonomy to HTTP statuses.
// Partial submissions carry the persisted order id and the steps that went
// through, so the client can show what actually happened.
func handleServiceError(w http.ResponseWriter, err error) {
	var valErr *checkout.ValidationError
	if errors.As(err, &valErr) {
		respondError(w, http.StatusBadRequest, "validation_failed", valErr.Reason)
		return
	}

	var partial *checkout.PartialSubmissionError
	if errors.As(err, &partial) {
		steps := make([]string, len(partial.Completed))
		for i, s := range partial.Completed {
			steps[i] = string(s)
		}
		respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:          partial.Error(),
			Code:           "partial_submission",
			OrderID:        partial.OrderID,
			CompletedSteps: steps,
		})
		return
	}

	var netErr *checkout.NetworkError
	if errors.As(err, &netErr) {
		respondError(w, http.StatusBadGateway, "upstream_unavailable", netErr.Error())
		return
	}

	if errors.Is(err, checkout.ErrSubmissionInFlight) {
		respondError(w, http.StatusConflict, "submission_in_flight", err.Error())
		return
	}

	respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
