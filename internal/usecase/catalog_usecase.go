package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"storefront/internal/catalog"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/session"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const productsFlightKey = "products:all"

// CatalogUsecase は /shop と /categories の業務ロジック。
// 全商品はキャッシュし、同時の取得は1本にまとめる。
type CatalogUsecase struct {
	productRepo repo.ProductRepository
	cache       repo.ProductCache
	views       viewBuilder
	group       singleflight.Group
	logger      *zap.Logger
}

// DI
func NewCatalogUsecase(productRepo repo.ProductRepository, cache repo.ProductCache, images repo.ImageResolver, logger *zap.Logger) *CatalogUsecase {
	return &CatalogUsecase{
		productRepo: productRepo,
		cache:       cache,
		views:       viewBuilder{images: images, logger: logger},
		logger:      logger,
	}
}

// Products は全商品を返す。返したスライスは変更しないこと。
func (u *CatalogUsecase) Products(ctx context.Context) ([]model.Product, error) {
	ps, ok, err := u.cache.GetProducts(ctx)
	if err != nil {
		u.logger.Warn("product cache read failed", zap.Error(err))
	}
	if ok {
		return ps, nil
	}

	v, err, _ := u.group.Do(productsFlightKey, func() (any, error) {
		//呼び出し元のキャンセルで相乗りした他のリクエストまで失敗させない
		fctx := context.WithoutCancel(ctx)
		ps, err := u.productRepo.ListAll(fctx)
		if err != nil {
			return nil, err
		}
		if err := u.cache.SetProducts(fctx, ps); err != nil {
			u.logger.Warn("product cache write failed", zap.Error(err))
		}
		return ps, nil
	})
	if err != nil {
		u.logger.Error("product list fetch failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFetchFailure, err)
	}
	return v.([]model.Product), nil
}

// PATCH /shop の入力。nil の項目は変えない。
type ShopInput struct {
	Categories     *[]string
	ToggleCategory *string
	Sort           *string
	PageSize       *int
	Page           *int
}

type ShopOutput struct {
	Items      []ProductView `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
	TotalCount int           `json:"total_count"`
	Start      int           `json:"start"`
	End        int           `json:"end"`

	Selected  []string      `json:"selected_categories"`
	Sort      model.SortKey `json:"sort"`
	PageSizes []int         `json:"page_sizes"`

	//取得失敗時は空一覧とエラー表示
	Error string `json:"error,omitempty"`
}

// Shop は現在の表示設定で一覧を返す。
func (u *CatalogUsecase) Shop(ctx context.Context) (ShopOutput, error) {
	return u.UpdateShop(ctx, ShopInput{})
}

// UpdateShop は表示設定を変えてから一覧を返す。
// 絞り込み・並び順・件数を変えると1ページ目に戻る。page はその後に適用する。
func (u *CatalogUsecase) UpdateShop(ctx context.Context, in ShopInput) (ShopOutput, error) {
	state := session.MustFromContext(ctx).Catalog

	update := catalog.Update{
		Categories:     in.Categories,
		ToggleCategory: in.ToggleCategory,
		PageSize:       in.PageSize,
	}
	if in.Sort != nil {
		key := model.SortKey(*in.Sort)
		update.Sort = &key
	}
	//不正な項目が1つでもあれば設定は変えない
	switch err := state.Apply(update); {
	case errors.Is(err, catalog.ErrInvalidSort):
		return ShopOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	case errors.Is(err, catalog.ErrInvalidPageSize):
		return ShopOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page_size")
	case err != nil:
		return ShopOutput{}, err
	}

	products, fetchErr := u.Products(ctx)

	var view catalog.View
	if in.Page != nil {
		view = state.GoToPage(*in.Page, products)
	} else {
		view = state.View(products)
	}

	params := state.Params()
	if params.Categories == nil {
		params.Categories = []string{}
	}
	out := ShopOutput{
		Items:      u.views.many(view.Items, cardImageSize),
		Page:       view.Page,
		PageSize:   view.PageSize,
		TotalPages: view.TotalPages,
		TotalCount: view.TotalCount,
		Start:      view.Start,
		End:        view.End,
		Selected:   params.Categories,
		Sort:       params.Sort,
		PageSizes:  state.PageSizes(),
	}
	if fetchErr != nil {
		out.Error = "failed to load products"
	}
	return out, nil
}

// Categories は絞り込みに出すカテゴリ一覧。
func (u *CatalogUsecase) Categories(ctx context.Context) ([]string, error) {
	products, err := u.Products(ctx)
	if errors.Is(err, ErrFetchFailure) {
		return nil, NewHTTPError(http.StatusBadGateway, "failed to load products")
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return catalog.Categories(products), nil
}
