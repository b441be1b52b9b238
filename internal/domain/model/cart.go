package model

import "github.com/shopspring/decimal"

// カートの明細
// 追加時点の価格を保存する（後から再取得しない）。
type CartLineItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (i CartLineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// カートのスナップショット
type CartState struct {
	Items  []CartLineItem `json:"items"`
	IsOpen bool           `json:"is_open"`
}

// 小計は毎回明細から計算する
func (s CartState) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}
