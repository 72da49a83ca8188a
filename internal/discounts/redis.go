package discounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/duongtrinhxuan/foodorder-checkout/internal/domain"
	"github.com/redis/go-redis/v9"
)

const catalogKey = "discounts:catalog"

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 5 * time.Minute,
	}
}

func (r RedisCache) Get(ctx context.Context) ([]domain.Discount, error) {
	data, err := r.client.Get(ctx, catalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var discounts []domain.Discount
	if err2 := json.Unmarshal(data, &discounts); err2 != nil {
		return nil, fmt.Errorf("unmarshal discounts failed: %w", err2)
	}

	return discounts, nil
}

func (r RedisCache) Set(ctx context.Context, discounts []domain.Discount) error {
	payload, err := json.Marshal(discounts)
	if err != nil {
		return fmt.Errorf("marshal discounts failed: %w", err)
	}

	// jitter spreads expiry so all gateways don't refetch at once
	jitter := time.Duration(rand.Intn(60)) * time.Second
	ttl := r.baseTTL + jitter
	if ret := r.client.Set(ctx, catalogKey, payload, ttl); ret.Err() != nil {
		return fmt.Errorf("redis set failed: %w", ret.Err())
	}
	return nil
}

func (r RedisCache) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, catalogKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
