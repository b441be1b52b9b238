package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/domain/model"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func shopProducts() []model.Product {
	return []model.Product{
		product("a", "Sofa", "Living", 300, 10),
		product("b", "Chair", "Dining", 100, 3),
		product("c", "Lamp", "Living", 50, 0),
		product("d", "Table", "Dining", 200, 8),
		product("e", "Bed", "Bedroom", 400, 1),
	}
}

func newCatalogUC(r *ProductRepoMock) *usecase.CatalogUsecase {
	return usecase.NewCatalogUsecase(r, infraRepo.NewProductMemoryCache(time.Minute), stubImages{}, zap.NewNop())
}

func TestCatalog_Products_CachesListAll(t *testing.T) {
	r := new(ProductRepoMock)
	r.On("ListAll", mock.Anything).Return(shopProducts(), nil).Once()
	uc := newCatalogUC(r)

	first, err := uc.Products(context.Background())
	require.NoError(t, err)
	second, err := uc.Products(context.Background())
	require.NoError(t, err)

	assert.Len(t, first, 5)
	assert.Equal(t, first, second)
	r.AssertExpectations(t)
}

func TestCatalog_Products_FetchFailure(t *testing.T) {
	r := new(ProductRepoMock)
	r.On("ListAll", mock.Anything).Return(nil, errors.New("boom"))
	uc := newCatalogUC(r)

	_, err := uc.Products(context.Background())

	assert.ErrorIs(t, err, usecase.ErrFetchFailure)
}

// 同時の取得は1回にまとまる
type countingRepo struct {
	ProductRepoMock
	calls   atomic.Int32
	release chan struct{}
}

func (r *countingRepo) ListAll(ctx context.Context) ([]model.Product, error) {
	r.calls.Add(1)
	<-r.release
	return shopProducts(), nil
}

func TestCatalog_Products_SingleFlight(t *testing.T) {
	r := &countingRepo{release: make(chan struct{})}
	uc := usecase.NewCatalogUsecase(r, infraRepo.NewProductMemoryCache(time.Minute), stubImages{}, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ps, err := uc.Products(context.Background())
			assert.NoError(t, err)
			assert.Len(t, ps, 5)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(r.release)
	wg.Wait()

	assert.LessOrEqual(t, r.calls.Load(), int32(2))
}

func TestCatalog_Shop_DefaultView(t *testing.T) {
	r := new(ProductRepoMock)
	r.On("ListAll", mock.Anything).Return(shopProducts(), nil)
	uc := newCatalogUC(r)
	ctx, _ := sessionCtx(t, nil, nil)

	out, err := uc.Shop(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, out.Page)
	assert.Equal(t, 2, out.PageSize)
	assert.Equal(t, 3, out.TotalPages)
	assert.Equal(t, 5, out.TotalCount)
	assert.Equal(t, 1, out.Start)
	assert.Equal(t, 2, out.End)
	assert.Equal(t, []int{2, 4}, out.PageSizes)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "a", out.Items[0].ID)
	assert.Equal(t, "img/300x300/ref-a", out.Items[0].ImageURL)
	assert.Empty(t, out.Error)
}

func TestCatalog_UpdateShop_FilterSortAndResetPage(t *testing.T) {
	r := new(ProductRepoMock)
	r.On("ListAll", mock.Anything).Return(shopProducts(), nil)
	uc := newCatalogUC(r)
	ctx, s := sessionCtx(t, nil, nil)

	page := 3
	_, err := uc.UpdateShop(ctx, usecase.ShopInput{Page: &page})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Catalog.Params().Page)

	sort := "price_asc"
	cats := []string{"Living", "Dining"}
	out, err := uc.UpdateShop(ctx, usecase.ShopInput{Sort: &sort, Categories: &cats})

	require.NoError(t, err)
	assert.Equal(t, 1, out.Page)
	assert.Equal(t, 4, out.TotalCount)
	assert.Equal(t, model.SortPriceAsc, out.Sort)
	assert.Equal(t, []string{"Living", "Dining"}, out.Selected)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "c", out.Items[0].ID)
	assert.Equal(t, "b", out.Items[1].ID)
}

func TestCatalog_UpdateShop_ToggleCategory(t *testing.T) {
	r := new(ProductRepoMock)
	r.On("ListAll", mock.Anything).Return(shopProducts(), nil)
	uc := newCatalogUC(r)
	ctx, _ := sessionCtx(t, nil, nil)

	cat := "Bedroom"
	out, err := uc.UpdateShop(ctx, usecase.ShopInput{ToggleCategory: &cat})
	require.NoError(t, err)
	assert.Equal(t, 1, out.TotalCount)

	out, err = uc.UpdateShop(ctx, usecase.ShopInput{ToggleCategory: &cat})
	require.NoError(t, err)
	assert.Equal(t, 5, out.TotalCount)
}

func TestCatalog_UpdateShop_PageClamps(t *testing.T) {
	r := new(ProductRepoMock)
	r.On("ListAll", mock.Anything).Return(shopProducts(), nil)
	uc := newCatalogUC(r)
	ctx, _ := sessionCtx(t, nil, nil)

	page := 99
	out, err := uc.UpdateShop(ctx, usecase.ShopInput{Page: &page})

	require.NoError(t, err)
	assert.Equal(t, 3, out.Page)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, 5, out.Start)
	assert.Equal(t, 5, out.End)
}

func TestCatalog_UpdateShop_InvalidInput(t *testing.T) {
	r := new(ProductRepoMock)
	uc := newCatalogUC(r)
	ctx, _ := sessionCtx(t, nil, nil)

	sort := "random"
	_, err := uc.UpdateShop(ctx, usecase.ShopInput{Sort: &sort})
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)

	size := 10
	_, err = uc.UpdateShop(ctx, usecase.ShopInput{PageSize: &size})
	he, ok = usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)

	r.AssertNotCalled(t, "ListAll", mock.Anything)
}

func TestCatalog_UpdateShop_RejectedInputLeavesSettings(t *testing.T) {
	r := new(ProductRepoMock)
	r.On("ListAll", mock.Anything).Return(shopProducts(), nil)
	uc := newCatalogUC(r)
	ctx, s := sessionCtx(t, nil, nil)
	page := 3
	_, err := uc.UpdateShop(ctx, usecase.ShopInput{Page: &page})
	require.NoError(t, err)

	sort := "price_desc"
	size := 7
	cats := []string{"Living"}
	_, err = uc.UpdateShop(ctx, usecase.ShopInput{Sort: &sort, PageSize: &size, Categories: &cats})

	assertStatus(t, err, http.StatusBadRequest)
	params := s.Catalog.Params()
	assert.Equal(t, model.SortDefault, params.Sort)
	assert.Equal(t, 2, params.PageSize)
	assert.Empty(t, params.Categories)
	assert.Equal(t, 3, params.Page)
}

func TestCatalog_Shop_FetchFailureShowsEmptyWithError(t *testing.T) {
	r := new(ProductRepoMock)
	r.On("ListAll", mock.Anything).Return(nil, errors.New("boom"))
	uc := newCatalogUC(r)
	ctx, _ := sessionCtx(t, nil, nil)

	out, err := uc.Shop(ctx)

	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Equal(t, 0, out.TotalCount)
	assert.Equal(t, 1, out.TotalPages)
	assert.NotEmpty(t, out.Error)
}

func TestCatalog_Shop_ShowsOriginalPrice(t *testing.T) {
	d := 20.0
	p := product("a", "Sofa", "Living", 80, 10)
	p.DiscountPercentage = &d
	r := new(ProductRepoMock)
	r.On("ListAll", mock.Anything).Return([]model.Product{p}, nil)
	uc := newCatalogUC(r)
	ctx, _ := sessionCtx(t, nil, nil)

	out, err := uc.Shop(ctx)

	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	require.NotNil(t, out.Items[0].OriginalPrice)
	assert.True(t, out.Items[0].OriginalPrice.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, model.StockBadgeInStock, out.Items[0].StockBadge)
}

func TestCatalog_Categories(t *testing.T) {
	r := new(ProductRepoMock)
	r.On("ListAll", mock.Anything).Return(shopProducts(), nil)
	uc := newCatalogUC(r)

	cats, err := uc.Categories(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"Living", "Dining", "Bedroom"}, cats)
}

func TestCatalog_Categories_FetchFailure(t *testing.T) {
	r := new(ProductRepoMock)
	r.On("ListAll", mock.Anything).Return(nil, errors.New("boom"))
	uc := newCatalogUC(r)

	_, err := uc.Categories(context.Background())

	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, he.Status)
}
