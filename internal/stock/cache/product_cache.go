// Package cache decorates the read-only catalog repositories with Redis.
// Product and store metadata change rarely compared to lot movements, so a
// short TTL takes the lookup pressure off the catalog tables.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/poslink/stock-service/internal/stock/domain"
	"github.com/poslink/stock-service/pkg/logger"
)

// DefaultTTL is how long cached catalog entries stay valid.
const DefaultTTL = 5 * time.Minute

// ProductCache wraps a domain.ProductRepository with Redis caching.
// A nil client disables caching and every lookup goes straight through.
type ProductCache struct {
	next   domain.ProductRepository
	client *redis.Client
	ttl    time.Duration
}

// NewProductCache creates a caching product repository decorator
func NewProductCache(next domain.ProductRepository, client *redis.Client) *ProductCache {
	return &ProductCache{next: next, client: client, ttl: DefaultTTL}
}

// FindByID returns the cached product if present, otherwise loads it from the
// underlying repository and caches the result. Cache failures are logged and
// treated as misses; they never fail the lookup.
func (c *ProductCache) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	if c.client == nil {
		return c.next.FindByID(ctx, id)
	}

	key := "product:" + id
	cached, err := c.client.Get(ctx, key).Bytes()
	if err == nil && len(cached) > 0 {
		var product domain.Product
		if err := json.Unmarshal(cached, &product); err == nil {
			logger.Logger.Debug().
				Str("product_id", id).
				Msg("Product cache hit")
			return &product, nil
		}
	}

	product, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(product); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			logger.Logger.Warn().
				Err(err).
				Str("product_id", id).
				Msg("Failed to cache product")
		}
	}
	return product, nil
}
