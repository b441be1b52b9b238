package usecase

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/checkout"
	"storefront/internal/domain/model"
	"storefront/internal/session"
	"storefront/internal/validator"

	"go.uber.org/zap"
)

type CheckoutUsecase struct {
	logger *zap.Logger
}

// DI
func NewCheckoutUsecase(logger *zap.Logger) *CheckoutUsecase {
	return &CheckoutUsecase{logger: logger}
}

type CheckoutInput struct {
	Billing   model.BillingDetails
	Agreement bool
}

type CheckoutStatusOutput struct {
	Status model.CheckoutStatus `json:"status"`
	Error  string               `json:"error,omitempty"`
}

// PlaceOrder は請求先を検証してから注文する。
func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, in CheckoutInput) (model.OrderConfirmation, error) {
	billing, err := validator.ValidateBilling(in.Billing)
	if err != nil {
		return model.OrderConfirmation{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	conf, err := session.MustCheckout(ctx).Submit(ctx, billing, in.Agreement)
	switch {
	case err == nil:
		return conf, nil
	case errors.Is(err, checkout.ErrNotStarted):
		return model.OrderConfirmation{}, NewHTTPError(http.StatusBadRequest, "cart is empty or terms not accepted")
	case errors.Is(err, checkout.ErrInProgress):
		return model.OrderConfirmation{}, NewHTTPError(http.StatusConflict, "checkout in progress")
	case errors.Is(err, checkout.ErrOrderPlacement):
		return model.OrderConfirmation{}, NewHTTPError(http.StatusBadGateway, "order placement failed")
	default:
		u.logger.Error("checkout failed", zap.Error(err))
		return model.OrderConfirmation{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (u *CheckoutUsecase) Status(ctx context.Context) CheckoutStatusOutput {
	status, lastErr := session.MustCheckout(ctx).Status()
	out := CheckoutStatusOutput{Status: status}
	if lastErr != nil {
		out.Error = "order placement failed"
	}
	return out
}

// Confirmation は直近の完了注文。無ければ 404。
func (u *CheckoutUsecase) Confirmation(ctx context.Context) (model.OrderConfirmation, error) {
	conf, ok := session.MustCheckout(ctx).LastConfirmation()
	if !ok {
		return model.OrderConfirmation{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return conf, nil
}
