package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type SearchHandler struct {
	uc *usecase.SearchUsecase
}

// DI
func NewSearchHandler(uc *usecase.SearchUsecase) *SearchHandler {
	return &SearchHandler{uc: uc}
}

func (h *SearchHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/search", h.search)
}

// q が無ければ最後の検索結果を返す
func (h *SearchHandler) search(c echo.Context) error {
	ctx := c.Request().Context()
	if !c.QueryParams().Has("q") {
		return c.JSON(http.StatusOK, h.uc.Last(ctx))
	}

	out, err := h.uc.Search(ctx, c.QueryParam("q"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
