package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// コンテンツAPI（商品の読み取り）の約束。
type ProductRepository interface {
	//全商品
	ListAll(ctx context.Context) ([]model.Product, error)

	//IDで1件。無ければErrNotFound
	FindByID(ctx context.Context, id string) (model.Product, error)

	//IDの一覧に含まれる商品（カート・ウィッシュリスト表示用）
	FindByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	//名前・説明・カテゴリの部分一致
	Search(ctx context.Context, q string) ([]model.Product, error)

	//指定ID以外を新しい順に
	ListRelated(ctx context.Context, excludeID string) ([]model.Product, error)
}
