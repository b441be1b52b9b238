package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// コンテンツAPIから取得した商品（読み取り専用）
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	StockLevel  int64           `json:"stock_level"`

	//割引率（0〜100）。無ければnil
	DiscountPercentage *float64 `json:"discount_percentage,omitempty"`

	IsFeatured bool   `json:"is_featured"`
	ImageRef   string `json:"image_ref"`

	CreatedAt time.Time `json:"created_at"`
}

// 在庫表示
type StockBadge string

const (
	StockBadgeInStock    StockBadge = "in_stock"
	StockBadgeLowStock   StockBadge = "low_stock"
	StockBadgeOutOfStock StockBadge = "out_of_stock"
)

// 在庫数から表示を決める（5個以下は残りわずか）
func (p Product) StockBadge() StockBadge {
	switch {
	case p.StockLevel > 5:
		return StockBadgeInStock
	case p.StockLevel > 0:
		return StockBadgeLowStock
	default:
		return StockBadgeOutOfStock
	}
}
