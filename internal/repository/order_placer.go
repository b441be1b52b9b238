package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 外部の注文処理
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req model.OrderRequest) (model.OrderConfirmation, error)
}
