package server

import (
	"net/http"

	"storefront/internal/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Product  *handler.ProductHandler
	Shop     *handler.ShopHandler
	Search   *handler.SearchHandler
	Cart     *handler.CartHandler
	Wishlist *handler.WishlistHandler
	Checkout *handler.CheckoutHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	h.Product.RegisterRoutes(e)
	h.Shop.RegisterRoutes(e)
	h.Search.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e)
	h.Wishlist.RegisterRoutes(e)
	h.Checkout.RegisterRoutes(e)
}
