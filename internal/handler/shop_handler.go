package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /shop と /categories
type ShopHandler struct {
	uc *usecase.CatalogUsecase
}

// DI
func NewShopHandler(uc *usecase.CatalogUsecase) *ShopHandler {
	return &ShopHandler{uc: uc}
}

// 指定した項目だけ変更する
type UpdateShopRequest struct {
	Categories     *[]string `json:"categories"`
	ToggleCategory *string   `json:"toggle_category"`
	Sort           *string   `json:"sort"`
	PageSize       *int      `json:"page_size"`
	Page           *int      `json:"page"`
}

func (h *ShopHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/shop", h.get)
	e.PATCH("/shop", h.update)
	e.GET("/categories", h.categories)
}

func (h *ShopHandler) get(c echo.Context) error {
	out, err := h.uc.Shop(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ShopHandler) update(c echo.Context) error {
	var req UpdateShopRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateShop(c.Request().Context(), usecase.ShopInput{
		Categories:     req.Categories,
		ToggleCategory: req.ToggleCategory,
		Sort:           req.Sort,
		PageSize:       req.PageSize,
		Page:           req.Page,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

func (h *ShopHandler) categories(c echo.Context) error {
	cats, err := h.uc.Categories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, categoriesResponse{Categories: cats})
}
