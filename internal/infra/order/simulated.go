package order

import (
	"context"
	"time"

	"storefront/internal/domain/model"

	"github.com/google/uuid"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() string
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.NewString() }

// SimulatedPlacer は一定時間待つだけの注文処理（決済・在庫引当なし）。
type SimulatedPlacer struct {
	delay time.Duration
	clock Clock
	ids   IDGenerator
}

func NewSimulatedPlacer(delay time.Duration) *SimulatedPlacer {
	return &SimulatedPlacer{delay: delay, clock: realClock{}, ids: uuidGenerator{}}
}

// テスト用に時計とID生成を差し替える
func NewSimulatedPlacerWith(delay time.Duration, clock Clock, ids IDGenerator) *SimulatedPlacer {
	return &SimulatedPlacer{delay: delay, clock: clock, ids: ids}
}

// PlaceOrder は開始前のキャンセルだけ受け付ける。待ち始めたら最後まで待つ。
func (p *SimulatedPlacer) PlaceOrder(ctx context.Context, req model.OrderRequest) (model.OrderConfirmation, error) {
	if err := ctx.Err(); err != nil {
		return model.OrderConfirmation{}, err
	}
	if p.delay > 0 {
		time.Sleep(p.delay)
	}

	return model.OrderConfirmation{
		OrderID:  p.ids.NewID(),
		Items:    req.Items,
		Total:    req.Subtotal,
		PlacedAt: p.clock.Now(),
	}, nil
}
