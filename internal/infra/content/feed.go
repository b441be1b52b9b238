package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// 移行元フィードの1商品
type FeedProduct struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	ImagePath          string          `json:"imagePath"`
	Price              decimal.Decimal `json:"price"`
	Description        string          `json:"description"`
	DiscountPercentage *float64        `json:"discountPercentage"`
	IsFeaturedProduct  bool            `json:"isFeaturedProduct"`
	StockLevel         int64           `json:"stockLevel"`
	Category           string          `json:"category"`
}

// FetchFeed は移行元APIから商品一覧を取る。
func FetchFeed(ctx context.Context, httpClient *http.Client, feedURL string) ([]FeedProduct, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: feed status %d", ErrRequest, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, err
	}
	var products []FeedProduct
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	return products, nil
}

// ToDocument は商品ドキュメント（create用）に変換する。
// 画像はアップロードせず、元URLを参照として持たせる。
func (f FeedProduct) ToDocument() (map[string]any, error) {
	if strings.TrimSpace(f.Name) == "" {
		return nil, fmt.Errorf("feed product %q: name required", f.ID)
	}
	if f.Price.IsNegative() {
		return nil, fmt.Errorf("feed product %q: price must be >= 0", f.ID)
	}
	if f.StockLevel < 0 {
		return nil, fmt.Errorf("feed product %q: stockLevel must be >= 0", f.ID)
	}

	price, _ := f.Price.Float64()
	doc := map[string]any{
		"_type":             "product",
		"id":                f.ID,
		"name":              strings.TrimSpace(f.Name),
		"price":             price,
		"description":       f.Description,
		"isFeaturedProduct": f.IsFeaturedProduct,
		"stockLevel":        f.StockLevel,
		"category":          strings.TrimSpace(f.Category),
	}
	if f.DiscountPercentage != nil {
		doc["discountPercentage"] = *f.DiscountPercentage
	}
	if f.ImagePath != "" {
		doc["image"] = map[string]any{
			"_type": "image",
			"asset": map[string]any{"_ref": f.ImagePath},
		}
	}
	return doc, nil
}
