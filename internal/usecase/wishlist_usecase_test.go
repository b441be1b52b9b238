package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"storefront/internal/domain/model"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/session"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWishlist_AddPersistsAndLists(t *testing.T) {
	kv := infraRepo.NewKVMemoryRepository()
	r := new(ProductRepoMock)
	r.On("FindByIDs", mock.Anything, []string{"b", "a"}).Return([]model.Product{
		product("a", "Sofa", "Living", 300, 10),
		product("b", "Chair", "Dining", 100, 3),
	}, nil)
	uc := usecase.NewWishlistUsecase(r, stubImages{}, zap.NewNop())
	ctx, _ := sessionCtx(t, kv, nil)

	_, err := uc.Add(ctx, "b")
	require.NoError(t, err)
	out, err := uc.Add(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, out.ProductIDs)
	assert.Equal(t, 2, out.Count)

	raw, found, err := kv.Get(context.Background(), session.WishlistKey("sess-1"))
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `["b","a"]`, string(raw))

	list, err := uc.Products(ctx)
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "b", list.Items[0].ID)
	assert.Equal(t, "a", list.Items[1].ID)
}

func TestWishlist_RemoveAndToggle(t *testing.T) {
	uc := usecase.NewWishlistUsecase(new(ProductRepoMock), stubImages{}, zap.NewNop())
	ctx, _ := sessionCtx(t, nil, nil)

	tg, err := uc.Toggle(ctx, "a")
	require.NoError(t, err)
	assert.True(t, tg.InWishlist)

	out, err := uc.Remove(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, out.ProductIDs)

	out, err = uc.Remove(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 0, out.Count)
	got, err := uc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Count)
}

func TestWishlist_SaveFailure(t *testing.T) {
	uc := usecase.NewWishlistUsecase(new(ProductRepoMock), stubImages{}, zap.NewNop())
	ctx, s := sessionCtx(t, failingKV{}, nil)

	_, err := uc.Add(ctx, "a")

	assertStatus(t, err, http.StatusInternalServerError)
	assert.False(t, s.Wishlist.Contains("a"))
}

// 最初の failures 回だけ読み込みに失敗するKV
type flakyReadKV struct {
	*infraRepo.KVMemoryRepository
	failures int
}

func (k *flakyReadKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if k.failures > 0 {
		k.failures--
		return nil, false, errors.New("i/o timeout")
	}
	return k.KVMemoryRepository.Get(ctx, key)
}

func TestWishlist_StorageUnavailable_DoesNotOverwrite(t *testing.T) {
	kv := &flakyReadKV{KVMemoryRepository: infraRepo.NewKVMemoryRepository(), failures: 2}
	require.NoError(t, kv.Set(context.Background(), session.WishlistKey("sess-1"), []byte(`["p1","p2","p3"]`)))
	uc := usecase.NewWishlistUsecase(new(ProductRepoMock), stubImages{}, zap.NewNop())
	ctx, _ := sessionCtx(t, kv, nil)

	_, err := uc.Add(ctx, "p4")
	assertStatus(t, err, http.StatusServiceUnavailable)
	raw, _, err := kv.KVMemoryRepository.Get(ctx, session.WishlistKey("sess-1"))
	require.NoError(t, err)
	assert.JSONEq(t, `["p1","p2","p3"]`, string(raw))

	got, err := uc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3"}, got.ProductIDs)

	out, err := uc.Add(ctx, "p4")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, out.ProductIDs)
}

func TestWishlist_EmptyID(t *testing.T) {
	uc := usecase.NewWishlistUsecase(new(ProductRepoMock), stubImages{}, zap.NewNop())
	ctx, _ := sessionCtx(t, nil, nil)

	_, err := uc.Add(ctx, " ")
	assertStatus(t, err, http.StatusBadRequest)

	_, err = uc.Toggle(ctx, "")
	assertStatus(t, err, http.StatusBadRequest)
}

// 詳細取得中にウィッシュリストが変わる
type gatedIDsRepo struct {
	ProductRepoMock
	started chan struct{}
}

func (r *gatedIDsRepo) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	close(r.started)
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestWishlist_ProductsSupersededByMutation(t *testing.T) {
	r := &gatedIDsRepo{started: make(chan struct{})}
	uc := usecase.NewWishlistUsecase(r, stubImages{}, zap.NewNop())
	ctx, s := sessionCtx(t, nil, nil)
	require.NoError(t, s.Wishlist.Add(ctx, "a"))

	done := make(chan error, 1)
	go func() {
		_, err := uc.Products(ctx)
		done <- err
	}()
	<-r.started

	_, err := uc.Add(ctx, "b")
	require.NoError(t, err)

	assertStatus(t, <-done, http.StatusConflict)
	assert.Empty(t, s.WishlistView().Products)
	assert.NoError(t, s.WishlistView().Err)
}
