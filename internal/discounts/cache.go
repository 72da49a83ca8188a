package discounts

import (
	"context"
	"errors"

	"github.com/duongtrinhxuan/foodorder-checkout/internal/domain"
)

// Cache holds the raw discount list. Validity is never cached because it
// depends on the live subtotal and clock.
type Cache interface {
	Get(ctx context.Context) ([]domain.Discount, error)
	Set(ctx context.Context, discounts []domain.Discount) error
	Delete(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
