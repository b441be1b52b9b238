package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"storefront/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

const productsCacheKey = "storefront:products:all"

type ProductRedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProductRedisCache(rdb *redis.Client, ttl time.Duration) *ProductRedisCache {
	return &ProductRedisCache{rdb: rdb, ttl: ttl}
}

func (c *ProductRedisCache) GetProducts(ctx context.Context) ([]model.Product, bool, error) {
	raw, err := c.rdb.Get(ctx, productsCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var products []model.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		//壊れていたら無視して取り直す
		return nil, false, nil
	}
	return products, true, nil
}

func (c *ProductRedisCache) SetProducts(ctx context.Context, products []model.Product) error {
	raw, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productsCacheKey, raw, c.ttl).Err()
}

// Invalidate は商品の取り込み後に呼ぶ（API側は次の一覧取得で取り直す）
func (c *ProductRedisCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, productsCacheKey).Err()
}
