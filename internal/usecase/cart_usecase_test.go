package usecase_test

import (
	"errors"
	"net/http"
	"sync"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "expected HTTPError, got %v", err)
	assert.Equal(t, status, he.Status)
}

func TestCart_AddToCart_UsesContentPrice(t *testing.T) {
	r := new(ProductRepoMock)
	r.On("FindByID", mock.Anything, "a").Return(product("a", "Sofa", "Living", 250, 10), nil)
	r.On("FindByIDs", mock.Anything, []string{"a"}).Return([]model.Product{product("a", "Sofa", "Living", 250, 10)}, nil)
	uc := usecase.NewCartUsecase(r, stubImages{}, zap.NewNop())
	ctx, s := sessionCtx(t, nil, nil)

	out, err := uc.AddToCart(ctx, usecase.AddCartInput{ProductID: "a", Quantity: 2})

	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Sofa", out.Items[0].Name)
	assert.Equal(t, "img/300x300/ref-a", out.Items[0].ImageURL)
	assert.True(t, out.Items[0].LineTotal.Equal(decimal.NewFromInt(500)))
	assert.True(t, out.Subtotal.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, int64(2), out.Count)
	assert.True(t, out.IsOpen)
	assert.True(t, s.Cart.IsOpen())
}

func TestCart_AddToCart_StockChecks(t *testing.T) {
	r := new(ProductRepoMock)
	r.On("FindByID", mock.Anything, "a").Return(product("a", "Sofa", "Living", 250, 3), nil)
	r.On("FindByID", mock.Anything, "z").Return(product("z", "Gone", "Living", 10, 0), nil)
	r.On("FindByIDs", mock.Anything, mock.Anything).Return([]model.Product{}, nil)
	uc := usecase.NewCartUsecase(r, stubImages{}, zap.NewNop())
	ctx, s := sessionCtx(t, nil, nil)

	_, err := uc.AddToCart(ctx, usecase.AddCartInput{ProductID: "a", Quantity: 2})
	require.NoError(t, err)

	_, err = uc.AddToCart(ctx, usecase.AddCartInput{ProductID: "a", Quantity: 2})
	assertStatus(t, err, http.StatusBadRequest)

	_, err = uc.AddToCart(ctx, usecase.AddCartInput{ProductID: "z", Quantity: 1})
	assertStatus(t, err, http.StatusBadRequest)

	assert.Equal(t, int64(2), s.Cart.Items()[0].Quantity)
}

func TestCart_AddToCart_ConcurrentAddsRespectStock(t *testing.T) {
	r := new(ProductRepoMock)
	r.On("FindByID", mock.Anything, "a").Return(product("a", "Sofa", "Living", 250, 5), nil)
	r.On("FindByIDs", mock.Anything, mock.Anything).Return([]model.Product{product("a", "Sofa", "Living", 250, 5)}, nil)
	uc := usecase.NewCartUsecase(r, stubImages{}, zap.NewNop())
	ctx, s := sessionCtx(t, nil, nil)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = uc.AddToCart(ctx, usecase.AddCartInput{ProductID: "a", Quantity: 1})
		}()
	}
	wg.Wait()

	require.Len(t, s.Cart.Items(), 1)
	assert.Equal(t, int64(5), s.Cart.Items()[0].Quantity)
}

func TestCart_AddToCart_InvalidInput(t *testing.T) {
	r := new(ProductRepoMock)
	r.On("FindByID", mock.Anything, "missing").Return(nil, repo.ErrNotFound)
	r.On("FindByID", mock.Anything, "down").Return(nil, errors.New("boom"))
	uc := usecase.NewCartUsecase(r, stubImages{}, zap.NewNop())
	ctx, s := sessionCtx(t, nil, nil)

	_, err := uc.AddToCart(ctx, usecase.AddCartInput{ProductID: "", Quantity: 1})
	assertStatus(t, err, http.StatusBadRequest)

	_, err = uc.AddToCart(ctx, usecase.AddCartInput{ProductID: "a", Quantity: 0})
	assertStatus(t, err, http.StatusBadRequest)

	_, err = uc.AddToCart(ctx, usecase.AddCartInput{ProductID: "missing", Quantity: 1})
	assertStatus(t, err, http.StatusBadRequest)

	_, err = uc.AddToCart(ctx, usecase.AddCartInput{ProductID: "down", Quantity: 1})
	assertStatus(t, err, http.StatusBadGateway)

	assert.True(t, s.Cart.IsEmpty())
}

func TestCart_UpdateQuantity(t *testing.T) {
	r := new(ProductRepoMock)
	r.On("FindByID", mock.Anything, "a").Return(product("a", "Sofa", "Living", 100, 5), nil)
	r.On("FindByIDs", mock.Anything, mock.Anything).Return([]model.Product{}, nil)
	uc := usecase.NewCartUsecase(r, stubImages{}, zap.NewNop())
	ctx, s := sessionCtx(t, nil, nil)
	require.NoError(t, s.Cart.AddToCart("a", 1, decimal.NewFromInt(100)))

	out, err := uc.UpdateQuantity(ctx, "a", 4)
	require.NoError(t, err)
	assert.True(t, out.Subtotal.Equal(decimal.NewFromInt(400)))

	_, err = uc.UpdateQuantity(ctx, "a", 6)
	assertStatus(t, err, http.StatusBadRequest)

	out, err = uc.UpdateQuantity(ctx, "a", 0)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.True(t, out.Subtotal.IsZero())
}

func TestCart_UpdateQuantity_RemovedProductStillAdjustable(t *testing.T) {
	r := new(ProductRepoMock)
	r.On("FindByID", mock.Anything, "old").Return(nil, repo.ErrNotFound)
	r.On("FindByIDs", mock.Anything, mock.Anything).Return([]model.Product{}, nil)
	uc := usecase.NewCartUsecase(r, stubImages{}, zap.NewNop())
	ctx, s := sessionCtx(t, nil, nil)
	require.NoError(t, s.Cart.AddToCart("old", 1, decimal.NewFromInt(10)))

	out, err := uc.UpdateQuantity(ctx, "old", 3)

	require.NoError(t, err)
	assert.Equal(t, int64(3), out.Items[0].Quantity)
	assert.Equal(t, "", out.Items[0].Name)
}

func TestCart_DetailFetchFailureKeepsLines(t *testing.T) {
	r := new(ProductRepoMock)
	r.On("FindByIDs", mock.Anything, []string{"a", "b"}).Return(nil, errors.New("boom"))
	uc := usecase.NewCartUsecase(r, stubImages{}, zap.NewNop())
	ctx, s := sessionCtx(t, nil, nil)
	require.NoError(t, s.Cart.AddToCart("a", 1, decimal.RequireFromString("10.10")))
	require.NoError(t, s.Cart.AddToCart("b", 2, decimal.RequireFromString("0.20")))

	out, err := uc.GetCart(ctx)

	require.NoError(t, err)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, "10.5", out.Subtotal.String())
	assert.NotEmpty(t, out.Error)
}

func TestCart_EmptyCartSkipsFetch(t *testing.T) {
	r := new(ProductRepoMock)
	uc := usecase.NewCartUsecase(r, stubImages{}, zap.NewNop())
	ctx, _ := sessionCtx(t, nil, nil)

	out, err := uc.GetCart(ctx)

	require.NoError(t, err)
	assert.Empty(t, out.Items)
	r.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
}

func TestCart_RemoveClearOpenClose(t *testing.T) {
	r := new(ProductRepoMock)
	r.On("FindByIDs", mock.Anything, mock.Anything).Return([]model.Product{}, nil)
	uc := usecase.NewCartUsecase(r, stubImages{}, zap.NewNop())
	ctx, s := sessionCtx(t, nil, nil)
	require.NoError(t, s.Cart.AddToCart("a", 1, decimal.NewFromInt(1)))
	require.NoError(t, s.Cart.AddToCart("b", 1, decimal.NewFromInt(1)))

	out, err := uc.RemoveFromCart(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)

	out, err = uc.SetOpen(ctx, false)
	require.NoError(t, err)
	assert.False(t, out.IsOpen)

	out, err = uc.ClearCart(ctx)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.False(t, out.IsOpen)

	out, err = uc.SetOpen(ctx, true)
	require.NoError(t, err)
	assert.True(t, out.IsOpen)
}
