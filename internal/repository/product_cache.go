package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 全商品一覧のキャッシュ
type ProductCache interface {
	GetProducts(ctx context.Context) ([]model.Product, bool, error)
	SetProducts(ctx context.Context, products []model.Product) error
}
