package levy

import (
	"context"
	"strconv"
	"time"

	platformredis "carbonledger/internal/platform/redis"
	dErrors "carbonledger/pkg/domain-errors"
)

// PriceSource supplies the carbon price in EUR per tCO2e.
type PriceSource interface {
	CurrentPrice(ctx context.Context) (float64, error)
}

// StaticPriceSource always returns a fixed price. Used when no external
// price feed is configured.
type StaticPriceSource struct {
	Price float64
}

func (s StaticPriceSource) CurrentPrice(context.Context) (float64, error) {
	if s.Price <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "carbon price must be positive")
	}
	return s.Price, nil
}

const (
	priceCacheKey = "carbonledger:carbon_price_eur"
	priceCacheTTL = time.Hour
)

// CachedPriceSource reads the carbon price from Redis, falling back to a
// default when the cache is empty or unreachable. Operators push updated
// prices into the cache out of band.
type CachedPriceSource struct {
	client   *platformredis.Client
	fallback float64
}

// NewCachedPriceSource wraps a Redis client with a fallback price. A nil
// client degrades to the fallback.
func NewCachedPriceSource(client *platformredis.Client, fallback float64) *CachedPriceSource {
	return &CachedPriceSource{client: client, fallback: fallback}
}

func (s *CachedPriceSource) CurrentPrice(ctx context.Context) (float64, error) {
	if s.client == nil {
		return s.fallback, nil
	}
	value, err := s.client.Get(ctx, priceCacheKey).Result()
	if err != nil {
		return s.fallback, nil
	}
	price, err := strconv.ParseFloat(value, 64)
	if err != nil || price <= 0 {
		return s.fallback, nil
	}
	return price, nil
}

// SetPrice caches a new carbon price.
func (s *CachedPriceSource) SetPrice(ctx context.Context, price float64) error {
	if price <= 0 {
		return dErrors.New(dErrors.CodeValidation, "carbon price must be positive")
	}
	if s.client == nil {
		return dErrors.New(dErrors.CodeInternal, "no price cache configured")
	}
	return s.client.Set(ctx, priceCacheKey, strconv.FormatFloat(price, 'f', -1, 64), priceCacheTTL).Err()
}
