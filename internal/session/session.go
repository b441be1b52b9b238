package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/domain/model"
	"storefront/internal/fetchguard"
	"storefront/internal/store"
)

// Session は1ブラウザ分の状態。
type Session struct {
	ID       string
	Cart     *store.CartStore
	Wishlist *store.WishlistStore
	Checkout *checkout.Orchestrator
	Catalog  *catalog.State

	//検索・ウィッシュリスト詳細の取得は最新だけ反映する
	SearchFetch   fetchguard.Guard
	WishlistFetch fetchguard.Guard

	loadOnce sync.Once

	mu           sync.Mutex
	search       SearchResult
	wishlistView WishlistView
	lastSeen     time.Time
}

// 最後に反映された検索結果
type SearchResult struct {
	Query    string
	Products []model.Product
	Err      error
}

// 最後に反映されたウィッシュリスト詳細
type WishlistView struct {
	Products []model.Product
	Err      error
}

func (s *Session) SetSearch(r SearchResult) {
	s.mu.Lock()
	s.search = r
	s.mu.Unlock()
}

func (s *Session) Search() SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search
}

func (s *Session) SetWishlistView(v WishlistView) {
	s.mu.Lock()
	s.wishlistView = v
	s.mu.Unlock()
}

func (s *Session) WishlistView() WishlistView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlistView
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// MissingProviderError は提供範囲の外でストアにアクセスしたことを示す。
// 結合ミスなので黙ってデフォルトを返さない。
type MissingProviderError struct {
	Store string
}

func (e *MissingProviderError) Error() string {
	return fmt.Sprintf("%s accessed outside of a provisioned session", e.Store)
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	if !ok || s == nil {
		return nil, &MissingProviderError{Store: "session"}
	}
	return s, nil
}

// Must* は提供されていなければ panic する。
func MustFromContext(ctx context.Context) *Session {
	return must(ctx, "session")
}

func MustCart(ctx context.Context) *store.CartStore {
	return must(ctx, "cart").Cart
}

func MustWishlist(ctx context.Context) *store.WishlistStore {
	return must(ctx, "wishlist").Wishlist
}

func MustCheckout(ctx context.Context) *checkout.Orchestrator {
	return must(ctx, "checkout").Checkout
}

func must(ctx context.Context, name string) *Session {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	if !ok || s == nil {
		panic(&MissingProviderError{Store: name})
	}
	return s
}
