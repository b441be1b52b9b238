package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
	"storefront/internal/store"

	"go.uber.org/zap"
)

var (
	// カートが空 or 同意なし。状態は変わらない
	ErrNotStarted = errors.New("checkout not started")

	// 送信中の再送信（二重注文防止）
	ErrInProgress = errors.New("checkout in progress")

	// 外部の注文処理が失敗した。カートはそのまま
	ErrOrderPlacement = errors.New("order placement failed")
)

type Orchestrator struct {
	mu      sync.Mutex
	status  model.CheckoutStatus
	lastErr error
	last    *model.OrderConfirmation

	cart   *store.CartStore
	placer repository.OrderPlacer
	logger *zap.Logger
}

func NewOrchestrator(cart *store.CartStore, placer repository.OrderPlacer, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		status: model.CheckoutStatusIdle,
		cart:   cart,
		placer: placer,
		logger: logger,
	}
}

// Submit は注文を1回だけ実行する。
// 送信中は ctx がキャンセルされても外部処理を止めない。
func (o *Orchestrator) Submit(ctx context.Context, billing model.BillingDetails, agreement bool) (model.OrderConfirmation, error) {
	o.mu.Lock()
	if o.status == model.CheckoutStatusSubmitting {
		o.mu.Unlock()
		return model.OrderConfirmation{}, ErrInProgress
	}

	state := o.cart.State()
	if len(state.Items) == 0 || !agreement {
		o.mu.Unlock()
		return model.OrderConfirmation{}, ErrNotStarted
	}

	o.status = model.CheckoutStatusSubmitting
	o.lastErr = nil
	o.mu.Unlock()

	req := model.OrderRequest{
		Items:    state.Items,
		Subtotal: state.Subtotal(),
		Billing:  billing,
	}
	conf, err := o.placer.PlaceOrder(context.WithoutCancel(ctx), req)

	o.mu.Lock()
	defer o.mu.Unlock()

	if err != nil {
		o.status = model.CheckoutStatusFailed
		o.lastErr = fmt.Errorf("%w: %w", ErrOrderPlacement, err)
		o.logger.Error("order placement failed", zap.Int("items", len(req.Items)), zap.Error(err))
		return model.OrderConfirmation{}, o.lastErr
	}

	o.cart.ClearCart()
	o.status = model.CheckoutStatusCompleted
	o.last = &conf
	o.logger.Info("order placed",
		zap.String("order_id", conf.OrderID),
		zap.String("total", conf.Total.String()),
	)
	return conf, nil
}

// Status は現在の状態と、失敗していればその理由。
func (o *Orchestrator) Status() (model.CheckoutStatus, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status, o.lastErr
}

// LastConfirmation は直近の完了注文（確認画面用）。
func (o *Orchestrator) LastConfirmation() (model.OrderConfirmation, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.last == nil {
		return model.OrderConfirmation{}, false
	}
	return *o.last, true
}
