package store

import (
	"errors"
	"sync"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

var (
	// 追加数量が1未満
	ErrInvalidQuantity = errors.New("invalid quantity")

	// 単価がマイナス
	ErrInvalidPrice = errors.New("invalid price")

	// 既存数量と合わせると在庫を超える
	ErrStockExceeded = errors.New("stock exceeded")
)

// CartStore は1セッション分のカート。
// 変更はすべて mu で直列化される。
type CartStore struct {
	mu     sync.Mutex
	items  []model.CartLineItem
	isOpen bool
}

func NewCartStore() *CartStore {
	return &CartStore{}
}

// AddToCart はカートに追加（同一商品は数量加算、単価は最初の値のまま）。
// 追加するとカートを開く。
func (s *CartStore) AddToCart(productID string, quantity int64, unitPrice decimal.Decimal) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return ErrInvalidPrice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.addLocked(productID, quantity, unitPrice)
	return nil
}

// AddWithinStock は追加後の数量が stock 以下のときだけ追加する。
// 数量の確認と追加は同じロックの中で行う。
func (s *CartStore) AddWithinStock(productID string, quantity int64, unitPrice decimal.Decimal, stock int64) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return ErrInvalidPrice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var existing int64
	if i := s.indexOf(productID); i >= 0 {
		existing = s.items[i].Quantity
	}
	if existing+quantity > stock {
		return ErrStockExceeded
	}
	s.addLocked(productID, quantity, unitPrice)
	return nil
}

func (s *CartStore) addLocked(productID string, quantity int64, unitPrice decimal.Decimal) {
	if i := s.indexOf(productID); i >= 0 {
		s.items[i].Quantity += quantity
	} else {
		s.items = append(s.items, model.CartLineItem{
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: unitPrice,
		})
	}
	s.isOpen = true
}

// UpdateQuantity は数量を上書きする。1未満なら削除と同じ。
func (s *CartStore) UpdateQuantity(productID string, newQuantity int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(productID)
	if i < 0 {
		return
	}
	if newQuantity < 1 {
		s.removeAt(i)
		return
	}
	s.items[i].Quantity = newQuantity
}

func (s *CartStore) RemoveFromCart(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(productID); i >= 0 {
		s.removeAt(i)
	}
}

// ClearCart は明細だけ消す（開閉状態はそのまま）。
func (s *CartStore) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

func (s *CartStore) OpenCart() {
	s.mu.Lock()
	s.isOpen = true
	s.mu.Unlock()
}

func (s *CartStore) CloseCart() {
	s.mu.Lock()
	s.isOpen = false
	s.mu.Unlock()
}

func (s *CartStore) Subtotal() decimal.Decimal {
	return s.State().Subtotal()
}

// Items は明細のコピーを追加順で返す。
func (s *CartStore) Items() []model.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItems()
}

func (s *CartStore) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isOpen
}

func (s *CartStore) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// State は明細と開閉状態を同じ時点で取る。
func (s *CartStore) State() model.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CartState{Items: s.copyItems(), IsOpen: s.isOpen}
}

func (s *CartStore) indexOf(productID string) int {
	for i, it := range s.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *CartStore) removeAt(i int) {
	s.items = append(s.items[:i], s.items[i+1:]...)
}

func (s *CartStore) copyItems() []model.CartLineItem {
	out := make([]model.CartLineItem, len(s.items))
	copy(out, s.items)
	return out
}
