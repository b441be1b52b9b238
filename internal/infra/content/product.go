package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 商品ドキュメントから使うフィールドだけ取り出す
const productProjection = `{
  _id, _createdAt, name, description, price, category, stockLevel,
  discountPercentage, isFeaturedProduct, "imageRef": image.asset._ref
}`

const (
	queryAllProducts     = `*[_type == "product"] | order(_createdAt asc) ` + productProjection
	queryProductByID     = `*[_type == "product" && _id == $productId][0] ` + productProjection
	queryProductsByIDs   = `*[_type == "product" && _id in $ids] ` + productProjection
	querySearchProducts  = `*[_type == "product" && (name match $query || description match $query || category match $query)] ` + productProjection
	queryRelatedProducts = `*[_type == "product" && _id != $productId] | order(_createdAt desc) ` + productProjection
)

var errMalformed = errors.New("malformed product record")

// 取り込み境界の形。型が違えばデコードで落ちる
type rawProduct struct {
	ID                 string           `json:"_id"`
	CreatedAt          string           `json:"_createdAt"`
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	Price              *decimal.Decimal `json:"price"`
	Category           string           `json:"category"`
	StockLevel         *float64         `json:"stockLevel"`
	DiscountPercentage *float64         `json:"discountPercentage"`
	IsFeaturedProduct  bool             `json:"isFeaturedProduct"`
	ImageRef           string           `json:"imageRef"`
}

func (r rawProduct) toModel() (model.Product, error) {
	if strings.TrimSpace(r.ID) == "" {
		return model.Product{}, fmt.Errorf("%w: missing _id", errMalformed)
	}
	if strings.TrimSpace(r.Name) == "" {
		return model.Product{}, fmt.Errorf("%w: %s: missing name", errMalformed, r.ID)
	}
	if r.Price == nil || r.Price.IsNegative() {
		return model.Product{}, fmt.Errorf("%w: %s: invalid price", errMalformed, r.ID)
	}

	var stock int64
	if r.StockLevel != nil {
		s := *r.StockLevel
		//int64 に収まらない値も不正
		if s < 0 || s >= math.MaxInt64 || s != math.Trunc(s) {
			return model.Product{}, fmt.Errorf("%w: %s: invalid stockLevel", errMalformed, r.ID)
		}
		stock = int64(s)
	}

	if d := r.DiscountPercentage; d != nil && (math.IsNaN(*d) || *d < 0 || *d > 100) {
		return model.Product{}, fmt.Errorf("%w: %s: invalid discountPercentage", errMalformed, r.ID)
	}

	p := model.Product{
		ID:                 r.ID,
		Name:               strings.TrimSpace(r.Name),
		Description:        r.Description,
		Price:              *r.Price,
		Category:           strings.TrimSpace(r.Category),
		StockLevel:         stock,
		DiscountPercentage: r.DiscountPercentage,
		IsFeatured:         r.IsFeaturedProduct,
		ImageRef:           r.ImageRef,
	}
	if t, err := time.Parse(time.RFC3339Nano, r.CreatedAt); err == nil {
		p.CreatedAt = t
	}
	return p, nil
}

// ProductContentRepository はコンテンツAPIを repository.ProductRepository として使う。
type ProductContentRepository struct {
	client *Client
	logger *zap.Logger
}

// DI
func NewProductContentRepository(client *Client, logger *zap.Logger) *ProductContentRepository {
	return &ProductContentRepository{client: client, logger: logger}
}

func (r *ProductContentRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	return r.list(ctx, queryAllProducts, nil)
}

func (r *ProductContentRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	raw, err := r.client.Query(ctx, queryProductByID, map[string]any{"productId": id})
	if err != nil {
		return model.Product{}, err
	}
	if isNull(raw) {
		return model.Product{}, repo.ErrNotFound
	}

	var rp rawProduct
	if err := json.Unmarshal(raw, &rp); err != nil {
		r.logger.Warn("dropping malformed product", zap.String("id", id), zap.Error(err))
		return model.Product{}, repo.ErrNotFound
	}
	p, err := rp.toModel()
	if err != nil {
		r.logger.Warn("dropping malformed product", zap.Error(err))
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r *ProductContentRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	return r.list(ctx, queryProductsByIDs, map[string]any{"ids": ids})
}

// Search は前後ワイルドカードで部分一致させる。
func (r *ProductContentRepository) Search(ctx context.Context, q string) ([]model.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []model.Product{}, nil
	}
	return r.list(ctx, querySearchProducts, map[string]any{"query": "*" + q + "*"})
}

func (r *ProductContentRepository) ListRelated(ctx context.Context, excludeID string) ([]model.Product, error) {
	return r.list(ctx, queryRelatedProducts, map[string]any{"productId": excludeID})
}

// 1件ずつデコードして、壊れたレコードはログを出して捨てる
func (r *ProductContentRepository) list(ctx context.Context, query string, params map[string]any) ([]model.Product, error) {
	raw, err := r.client.Query(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return []model.Product{}, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: result is not a list: %w", ErrRequest, err)
	}

	out := make([]model.Product, 0, len(records))
	for _, rec := range records {
		var rp rawProduct
		if err := json.Unmarshal(rec, &rp); err != nil {
			r.logger.Warn("dropping malformed product", zap.Error(err))
			continue
		}
		p, err := rp.toModel()
		if err != nil {
			r.logger.Warn("dropping malformed product", zap.Error(err))
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}
