package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/session"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRelatedLimit = 4
	maxRelatedLimit     = 100
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	views       viewBuilder
	logger      *zap.Logger
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, images repo.ImageResolver, logger *zap.Logger) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		views:       viewBuilder{images: images, logger: logger},
		logger:      logger,
	}
}

type ProductDetailOutput struct {
	Product ProductView `json:"product"`

	//関連商品（「もっと見る」は limit を増やして取り直す）
	Related        []ProductView `json:"related"`
	RelatedHasMore bool          `json:"related_has_more"`
	RelatedError   string        `json:"related_error,omitempty"`

	InWishlist bool  `json:"in_wishlist"`
	InCart     int64 `json:"in_cart"`
}

// GetProductDetail は商品と関連商品を並行で取る。
// 関連商品の失敗は詳細を失敗させない。
func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID string, relatedLimit int) (ProductDetailOutput, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return ProductDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if relatedLimit < 1 {
		relatedLimit = defaultRelatedLimit
	}
	relatedLimit = min(relatedLimit, maxRelatedLimit)

	var (
		g          errgroup.Group
		product    model.Product
		related    []model.Product
		relatedErr error
	)
	g.Go(func() error {
		p, err := u.productRepo.FindByID(ctx, productID)
		if err != nil {
			return err
		}
		product = p
		return nil
	})
	g.Go(func() error {
		ps, err := u.productRepo.ListRelated(ctx, productID)
		if err != nil {
			u.logger.Warn("related products fetch failed", zap.String("product_id", productID), zap.Error(err))
			relatedErr = err
			return nil
		}
		related = ps
		return nil
	})

	err := g.Wait()
	if errors.Is(err, repo.ErrNotFound) {
		return ProductDetailOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		u.logger.Error("product fetch failed", zap.String("product_id", productID), zap.Error(err))
		return ProductDetailOutput{}, NewHTTPError(http.StatusBadGateway, "failed to load product")
	}

	out := ProductDetailOutput{
		Product: u.views.one(product, detailImageSize),
		Related: []ProductView{},
	}
	if relatedErr != nil {
		out.RelatedError = "failed to load related products"
	} else {
		out.RelatedHasMore = len(related) > relatedLimit
		out.Related = u.views.many(related[:min(relatedLimit, len(related))], cardImageSize)
	}

	//セッションがあればカート・ウィッシュリストの状態も返す
	if s, err := session.FromContext(ctx); err == nil {
		out.InWishlist = s.Wishlist.Contains(product.ID)
		for _, it := range s.Cart.Items() {
			if it.ProductID == product.ID {
				out.InCart = it.Quantity
			}
		}
	}
	return out, nil
}
