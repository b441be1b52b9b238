package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/session"
	"storefront/internal/store"

	"go.uber.org/zap"
)

type WishlistUsecase struct {
	productRepo repo.ProductRepository
	views       viewBuilder
	logger      *zap.Logger
}

// DI
func NewWishlistUsecase(productRepo repo.ProductRepository, images repo.ImageResolver, logger *zap.Logger) *WishlistUsecase {
	return &WishlistUsecase{
		productRepo: productRepo,
		views:       viewBuilder{images: images, logger: logger},
		logger:      logger,
	}
}

type WishlistResponse struct {
	ProductIDs []string `json:"product_ids"`
	Count      int      `json:"count"`
}

type WishlistToggleResponse struct {
	WishlistResponse
	InWishlist bool `json:"in_wishlist"`
}

type WishlistProductsResponse struct {
	Items []ProductView `json:"items"`
	Error string        `json:"error,omitempty"`
}

// Get は未読み込みなら読み直してから返す。
func (u *WishlistUsecase) Get(ctx context.Context) (WishlistResponse, error) {
	w := session.MustWishlist(ctx)
	if err := w.Load(ctx); err != nil {
		return WishlistResponse{}, u.saveError(ctx, err)
	}
	return wishlistResponse(w.State()), nil
}

func (u *WishlistUsecase) Add(ctx context.Context, productID string) (WishlistResponse, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return WishlistResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	s := session.MustFromContext(ctx)
	if err := s.Wishlist.Add(ctx, productID); err != nil {
		return WishlistResponse{}, u.saveError(ctx, err)
	}
	//実行中の詳細取得は古い一覧で始まっている
	s.WishlistFetch.Invalidate()
	return wishlistResponse(s.Wishlist.State()), nil
}

func (u *WishlistUsecase) Remove(ctx context.Context, productID string) (WishlistResponse, error) {
	s := session.MustFromContext(ctx)
	if err := s.Wishlist.Remove(ctx, strings.TrimSpace(productID)); err != nil {
		return WishlistResponse{}, u.saveError(ctx, err)
	}
	s.WishlistFetch.Invalidate()
	return wishlistResponse(s.Wishlist.State()), nil
}

// Toggle はハートボタン用。
func (u *WishlistUsecase) Toggle(ctx context.Context, productID string) (WishlistToggleResponse, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return WishlistToggleResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	s := session.MustFromContext(ctx)
	in, err := s.Wishlist.Toggle(ctx, productID)
	if err != nil {
		return WishlistToggleResponse{}, u.saveError(ctx, err)
	}
	s.WishlistFetch.Invalidate()
	return WishlistToggleResponse{WishlistResponse: wishlistResponse(s.Wishlist.State()), InWishlist: in}, nil
}

// Products はウィッシュリストの商品詳細を追加順で返す。
// 取得中にウィッシュリストが変わった場合は反映せず 409。
func (u *WishlistUsecase) Products(ctx context.Context) (WishlistProductsResponse, error) {
	s := session.MustFromContext(ctx)
	fctx, ticket := s.WishlistFetch.Begin(ctx)

	ids := s.Wishlist.IDs()
	products, err := u.productRepo.FindByIDs(fctx, ids)
	ordered := orderByIDs(products, ids)
	view := session.WishlistView{Products: ordered, Err: err}

	if !s.WishlistFetch.Commit(ticket, func() { s.SetWishlistView(view) }) {
		u.logger.Debug("stale wishlist fetch dropped", zap.String("session_id", s.ID))
		return WishlistProductsResponse{}, NewHTTPError(http.StatusConflict, "superseded")
	}

	if err != nil {
		u.logger.Error("wishlist products fetch failed", zap.Error(err))
		return WishlistProductsResponse{Items: []ProductView{}, Error: "failed to load wishlist"}, nil
	}
	return WishlistProductsResponse{Items: u.views.many(ordered, cardImageSize)}, nil
}

// 保存先に届かない場合は 503（保存済みの一覧は上書きしていない）
func (u *WishlistUsecase) saveError(ctx context.Context, err error) error {
	s := session.MustFromContext(ctx)
	if errors.Is(err, store.ErrStorageUnavailable) {
		u.logger.Warn("wishlist storage unavailable", zap.String("session_id", s.ID), zap.Error(err))
		return NewHTTPError(http.StatusServiceUnavailable, "wishlist storage unavailable")
	}
	u.logger.Error("wishlist save failed", zap.String("session_id", s.ID), zap.Error(err))
	return NewHTTPError(http.StatusInternalServerError, "failed to save wishlist")
}

func wishlistResponse(st model.WishlistState) WishlistResponse {
	return WishlistResponse{ProductIDs: st.ProductIDs, Count: len(st.ProductIDs)}
}

// ids の順に並べ直す（見つからないIDは飛ばす）
func orderByIDs(products []model.Product, ids []string) []model.Product {
	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	out := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}
