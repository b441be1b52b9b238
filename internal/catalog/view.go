package catalog

import (
	"slices"

	"storefront/internal/domain/model"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Params は一覧表示の入力。
type Params struct {
	Categories []string      // 空なら絞り込みなし
	Sort       model.SortKey // 空は default
	PageSize   int
	Page       int // 1始まり
}

// View は表示する範囲。
type View struct {
	Items      []model.Product `json:"items"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
	TotalCount int             `json:"total_count"`

	//「Showing start–end of total」用（1始まり、0件なら0）
	Start int `json:"start"`
	End   int `json:"end"`
}

// Derive は filter -> 安定ソート -> ページ切り出し。
// Page は [1, TotalPages] に丸める。products は変更しない。
func Derive(products []model.Product, p Params) View {
	sorted := Sort(Filter(products, p.Categories), p.Sort)

	pageSize := p.PageSize
	if pageSize < 1 {
		pageSize = 1
	}
	totalPages := TotalPages(len(sorted), pageSize)
	page := ClampPage(p.Page, totalPages)

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(sorted))

	v := View{
		Items:      sorted[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalCount: len(sorted),
		End:        end,
	}
	if end > start {
		v.Start = start + 1
	}
	return v
}

// Filter は選択カテゴリに含まれる商品だけ残す（順序は保つ）。
func Filter(products []model.Product, categories []string) []model.Product {
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if len(categories) == 0 || slices.Contains(categories, p.Category) {
			out = append(out, p)
		}
	}
	return out
}

// Sort は安定ソートした新しいスライスを返す。同値は元の順序のまま。
func Sort(products []model.Product, key model.SortKey) []model.Product {
	out := slices.Clone(products)

	switch key {
	case model.SortPriceAsc:
		slices.SortStableFunc(out, func(a, b model.Product) int { return a.Price.Cmp(b.Price) })
	case model.SortPriceDesc:
		slices.SortStableFunc(out, func(a, b model.Product) int { return b.Price.Cmp(a.Price) })
	case model.SortNameAsc, model.SortNameDesc:
		//Collatorは並行利用不可なので毎回作る
		col := collate.New(language.English)
		if key == model.SortNameAsc {
			slices.SortStableFunc(out, func(a, b model.Product) int { return col.CompareString(a.Name, b.Name) })
		} else {
			slices.SortStableFunc(out, func(a, b model.Product) int { return col.CompareString(b.Name, a.Name) })
		}
	}
	return out
}

// TotalPages は最低1。
func TotalPages(count, pageSize int) int {
	if pageSize < 1 || count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

func ClampPage(page, totalPages int) int {
	return max(1, min(page, max(totalPages, 1)))
}

// Categories は空でないカテゴリを初出順で返す。
func Categories(products []model.Product) []string {
	out := []string{}
	for _, p := range products {
		if p.Category != "" && !slices.Contains(out, p.Category) {
			out = append(out, p.Category)
		}
	}
	return out
}
