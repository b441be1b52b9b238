package model

// ウィッシュリストのスナップショット（追加順）
type WishlistState struct {
	ProductIDs []string `json:"product_ids"`
}
