package handler

import (
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /checkout（サインイン必須）
type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

// DI
func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

type PlaceOrderRequest struct {
	Billing   model.BillingDetails `json:"billing"`
	Agreement bool                 `json:"agreement"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/checkout")

	g.POST("", h.placeOrder)
	g.GET("/status", h.status)
	g.GET("/confirmation", h.confirmation)
}

func (h *CheckoutHandler) placeOrder(c echo.Context) error {
	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.PlaceOrder(c.Request().Context(), usecase.CheckoutInput{
		Billing:   req.Billing,
		Agreement: req.Agreement,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CheckoutHandler) status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.uc.Status(c.Request().Context()))
}

func (h *CheckoutHandler) confirmation(c echo.Context) error {
	out, err := h.uc.Confirmation(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
