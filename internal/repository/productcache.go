package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/jitterlabs/order-api/internal/domain/product"
)

const catalogCacheKey = "catalog:products"

var _ product.Repository = (*CachedProductRepository)(nil)

// CachedProductRepository is a read-through Redis cache over a product
// repository. The catalog is read-only from this service's perspective, so
// entries expire by TTL and are never invalidated explicitly.
type CachedProductRepository struct {
	inner product.Repository
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCachedProductRepository wraps inner with a Redis cache for List.
func NewCachedProductRepository(inner product.Repository, rdb *redis.Client, ttl time.Duration) *CachedProductRepository {
	return &CachedProductRepository{inner: inner, rdb: rdb, ttl: ttl}
}

// List serves the catalog from Redis when possible. Cache failures fall back
// to the database; the cache is best-effort.
func (c *CachedProductRepository) List(ctx context.Context) ([]product.Product, error) {
	if raw, err := c.rdb.Get(ctx, catalogCacheKey).Bytes(); err == nil {
		var cached []product.Product
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	products, err := c.inner.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	if raw, err := json.Marshal(products); err == nil {
		_ = c.rdb.Set(ctx, catalogCacheKey, raw, c.ttl).Err()
	}
	return products, nil
}

// ExistingIDs always goes to the database: order validation must be
// authoritative, not cache-stale.
func (c *CachedProductRepository) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	return c.inner.ExistingIDs(ctx, ids)
}
