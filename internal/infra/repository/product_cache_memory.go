package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"storefront/internal/domain/model"
)

// ProductMemoryCache はREDIS_URLが無いときのプロセス内キャッシュ（TTL付き）
type ProductMemoryCache struct {
	mu        sync.RWMutex
	products  []model.Product
	fetchedAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

func NewProductMemoryCache(ttl time.Duration) *ProductMemoryCache {
	return &ProductMemoryCache{ttl: ttl, now: time.Now}
}

func (c *ProductMemoryCache) GetProducts(ctx context.Context) ([]model.Product, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.products != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		return slices.Clone(c.products), true, nil
	}
	return nil, false, nil
}

func (c *ProductMemoryCache) SetProducts(ctx context.Context, products []model.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = slices.Clone(products)
	if c.products == nil {
		c.products = []model.Product{}
	}
	c.fetchedAt = c.now()
	return nil
}

