package usecase

import (
	"storefront/internal/catalog"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 画像サイズ（一覧カードと詳細）
const (
	cardImageSize   = 300
	detailImageSize = 600
)

// ProductView は表示用の商品。割引前価格と在庫表示を含む。
type ProductView struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	Price              decimal.Decimal  `json:"price"`
	OriginalPrice      *decimal.Decimal `json:"original_price,omitempty"`
	DiscountPercentage *float64         `json:"discount_percentage,omitempty"`
	Category           string           `json:"category"`
	StockLevel         int64            `json:"stock_level"`
	StockBadge         model.StockBadge `json:"stock_badge"`
	IsFeatured         bool             `json:"is_featured"`
	ImageURL           string           `json:"image_url"`
}

// 商品を表示用に変換する
type viewBuilder struct {
	images repo.ImageResolver
	logger *zap.Logger
}

func (b viewBuilder) one(p model.Product, size int) ProductView {
	v := ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		StockLevel:  p.StockLevel,
		StockBadge:  p.StockBadge(),
		IsFeatured:  p.IsFeatured,
	}
	if orig, ok := catalog.OriginalPrice(p.Price, p.DiscountPercentage); ok {
		v.OriginalPrice = &orig
		v.DiscountPercentage = p.DiscountPercentage
	}
	if b.images != nil && p.ImageRef != "" {
		url, err := b.images.URL(p.ImageRef, size, size)
		if err != nil {
			b.logger.Warn("image url failed", zap.String("product_id", p.ID), zap.Error(err))
		}
		v.ImageURL = url
	}
	return v
}

func (b viewBuilder) many(ps []model.Product, size int) []ProductView {
	out := make([]ProductView, 0, len(ps))
	for _, p := range ps {
		out = append(out, b.one(p, size))
	}
	return out
}
