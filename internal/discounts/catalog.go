package discounts

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/duongtrinhxuan/foodorder-checkout/internal/domain"
	"github.com/duongtrinhxuan/foodorder-checkout/internal/pricing"
	"golang.org/x/sync/singleflight"
)

// Source is the upstream discount list, normally the order API.
type Source interface {
	GetDiscounts(ctx context.Context) ([]domain.Discount, error)
}

var ErrDiscountNotFound = errors.New("discount not found")

// Catalog serves the discount list cache-aside: redis first, API on miss,
// with singleflight collapsing concurrent misses into one upstream call.
// Cache trouble degrades to the source, it never fails a read.
type Catalog struct {
	source Source
	cache  Cache
	sfg    singleflight.Group
}

func NewCatalog(source Source, cache Cache) *Catalog {
	return &Catalog{
		source: source,
		cache:  cache,
	}
}

// All returns the raw discount list, valid or not.
func (c *Catalog) All(ctx context.Context) ([]domain.Discount, error) {
	v, err, _ := c.sfg.Do(catalogKey, func() (interface{}, error) {

		discounts, err := c.cache.Get(ctx)
		if err == nil {
			return discounts, nil
		}

		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("discount cache get error: %v", err)
		}

		discounts, errGet := c.source.GetDiscounts(ctx)
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if errSet := c.cache.Set(setCtx, discounts); errSet != nil {
				log.Printf("discount cache set error: %v", errSet)
			}
		}()

		return discounts, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]domain.Discount), nil
}

// ListValid filters the catalog down to discounts that apply to the given
// subtotal right now. The same validity check runs again at submit time,
// because both the cart and the clock may have moved since this call.
func (c *Catalog) ListValid(ctx context.Context, subtotal int64, now time.Time) ([]domain.Discount, error) {
	all, err := c.All(ctx)
	if err != nil {
		return nil, err
	}

	valid := make([]domain.Discount, 0, len(all))
	for _, d := range all {
		if pricing.Valid(&d, subtotal, now) {
			valid = append(valid, d)
		}
	}
	return valid, nil
}

// Get resolves one discount by id from the catalog.
func (c *Catalog) Get(ctx context.Context, id int64) (*domain.Discount, error) {
	all, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, ErrDiscountNotFound
}
