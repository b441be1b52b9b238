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

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartUsecase は /cart の業務ロジックです。
// カート本体はセッションのストア、商品情報はコンテンツAPIから取ります。
type CartUsecase struct {
	productRepo repo.ProductRepository
	views       viewBuilder
	logger      *zap.Logger
}

func NewCartUsecase(productRepo repo.ProductRepository, images repo.ImageResolver, logger *zap.Logger) *CartUsecase {
	return &CartUsecase{
		productRepo: productRepo,
		views:       viewBuilder{images: images, logger: logger},
		logger:      logger,
	}
}

// price は追加時点の単価を返します。
type CartItemResponse struct {
	ProductID  string          `json:"product_id"`
	Name       string          `json:"name"`
	ImageURL   string          `json:"image_url"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int64           `json:"quantity"`
	LineTotal  decimal.Decimal `json:"line_total"`
	StockLevel int64           `json:"stock_level"`
}

type CartResponse struct {
	Items    []CartItemResponse `json:"items"`
	Subtotal decimal.Decimal    `json:"subtotal"`
	Count    int64              `json:"count"`
	IsOpen   bool               `json:"is_open"`

	//商品情報が取れなくても明細と小計は返す
	Error string `json:"error,omitempty"`
}

type AddCartInput struct {
	ProductID string
	Quantity  int64
}

func (u *CartUsecase) GetCart(ctx context.Context) (CartResponse, error) {
	return u.buildCartResponse(ctx, session.MustCart(ctx)), nil
}

// AddToCart はカートに追加（同一商品は数量加算）。
func (u *CartUsecase) AddToCart(ctx context.Context, in AddCartInput) (CartResponse, error) {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	cart := session.MustCart(ctx)

	// 商品チェック（単価はコンテンツ側の値を使う）
	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		u.logger.Error("product fetch failed", zap.String("product_id", productID), zap.Error(err))
		return CartResponse{}, NewHTTPError(http.StatusBadGateway, "failed to load product")
	}
	if p.StockLevel < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "out of stock")
	}

	switch err := cart.AddWithinStock(p.ID, in.Quantity, p.Price, p.StockLevel); {
	case errors.Is(err, store.ErrStockExceeded):
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	case errors.Is(err, store.ErrInvalidQuantity), errors.Is(err, store.ErrInvalidPrice):
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return u.buildCartResponse(ctx, cart), nil
}

// UpdateQuantity は数量を上書き。1未満は削除、カートに無ければ何もしない。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, productID string, quantity int64) (CartResponse, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	cart := session.MustCart(ctx)

	//在庫チェック（増やす場合のみ）
	if quantity >= 1 {
		p, err := u.productRepo.FindByID(ctx, productID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			//掲載終了した商品も数量は変えられる
		case err != nil:
			u.logger.Error("product fetch failed", zap.String("product_id", productID), zap.Error(err))
			return CartResponse{}, NewHTTPError(http.StatusBadGateway, "failed to load product")
		case quantity > p.StockLevel:
			return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
		}
	}

	cart.UpdateQuantity(productID, quantity)
	return u.buildCartResponse(ctx, cart), nil
}

// 明細削除
func (u *CartUsecase) RemoveFromCart(ctx context.Context, productID string) (CartResponse, error) {
	cart := session.MustCart(ctx)
	cart.RemoveFromCart(strings.TrimSpace(productID))
	return u.buildCartResponse(ctx, cart), nil
}

func (u *CartUsecase) ClearCart(ctx context.Context) (CartResponse, error) {
	cart := session.MustCart(ctx)
	cart.ClearCart()
	return u.buildCartResponse(ctx, cart), nil
}

// SetOpen はカートパネルの開閉。
func (u *CartUsecase) SetOpen(ctx context.Context, open bool) (CartResponse, error) {
	cart := session.MustCart(ctx)
	if open {
		cart.OpenCart()
	} else {
		cart.CloseCart()
	}
	return u.buildCartResponse(ctx, cart), nil
}

// 明細に商品名・画像を付けて返す。小計はカートの値そのもの。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cart *store.CartStore) CartResponse {
	state := cart.State()

	resp := CartResponse{
		Items:    make([]CartItemResponse, 0, len(state.Items)),
		Subtotal: state.Subtotal(),
		IsOpen:   state.IsOpen,
	}
	if len(state.Items) == 0 {
		return resp
	}

	ids := make([]string, 0, len(state.Items))
	for _, it := range state.Items {
		ids = append(ids, it.ProductID)
	}
	byID := map[string]model.Product{}
	products, err := u.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		u.logger.Warn("cart product fetch failed", zap.Error(err))
		resp.Error = "failed to load product details"
	}
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, it := range state.Items {
		item := CartItemResponse{
			ProductID: it.ProductID,
			Price:     it.UnitPrice,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal(),
		}
		if p, ok := byID[it.ProductID]; ok {
			v := u.views.one(p, cardImageSize)
			item.Name = v.Name
			item.ImageURL = v.ImageURL
			item.StockLevel = v.StockLevel
		}
		resp.Items = append(resp.Items, item)
		resp.Count += it.Quantity
	}
	return resp
}
