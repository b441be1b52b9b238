package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"storefront/internal/domain/model"
	infraRepo "storefront/internal/infra/repository"
	repo "storefront/internal/repository"
	"storefront/internal/session"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// =====================
// Repository mocks
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

func (m *ProductRepoMock) Search(ctx context.Context, q string) ([]model.Product, error) {
	args := m.Called(ctx, q)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

func (m *ProductRepoMock) ListRelated(ctx context.Context, excludeID string) ([]model.Product, error) {
	args := m.Called(ctx, excludeID)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

var _ repo.ProductRepository = (*ProductRepoMock)(nil)

type PlacerMock struct{ mock.Mock }

func (m *PlacerMock) PlaceOrder(ctx context.Context, req model.OrderRequest) (model.OrderConfirmation, error) {
	args := m.Called(ctx, req)
	c, _ := args.Get(0).(model.OrderConfirmation)
	return c, args.Error(1)
}

// 画像URLは参照をそのまま埋め込む
type stubImages struct{}

func (stubImages) URL(ref string, width, height int) (string, error) {
	return fmt.Sprintf("img/%dx%d/%s", width, height, ref), nil
}

// =====================
// helper
// =====================

func product(id, name, category string, price int64, stock int64) model.Product {
	return model.Product{
		ID:         id,
		Name:       name,
		Category:   category,
		Price:      decimal.NewFromInt(price),
		StockLevel: stock,
		ImageRef:   "ref-" + id,
		CreatedAt:  time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
	}
}

// セッションを1つ用意して ctx に載せる
func sessionCtx(t *testing.T, kv repo.KeyValueStore, placer repo.OrderPlacer) (context.Context, *session.Session) {
	t.Helper()
	if kv == nil {
		kv = infraRepo.NewKVMemoryRepository()
	}
	if placer == nil {
		placer = new(PlacerMock)
	}
	r := session.NewRegistry(kv, placer, []int{2, 4}, zap.NewNop())
	s := r.Get(context.Background(), "sess-1")
	return session.WithSession(context.Background(), s), s
}

// 書き込みだけ失敗するKV
type failingKV struct{}

func (failingKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (failingKV) Set(ctx context.Context, key string, value []byte) error {
	return fmt.Errorf("disk full")
}
