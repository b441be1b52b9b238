package catalog

import (
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// OriginalPrice は割引前の表示価格 round(price / (1 - d/100))。
// d が (0, 100) の外なら表示しない（ok=false）。
func OriginalPrice(price decimal.Decimal, discount *float64) (decimal.Decimal, bool) {
	if discount == nil {
		return decimal.Decimal{}, false
	}
	d := *discount
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 || d >= 100 {
		return decimal.Decimal{}, false
	}

	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(d).Div(hundred))
	if !factor.IsPositive() {
		return decimal.Decimal{}, false
	}
	return price.Div(factor).Round(0), true
}
