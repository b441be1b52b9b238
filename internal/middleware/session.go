package middleware

import (
	"net/http"

	"storefront/internal/session"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const SessionCookieName = "sid"

// SessionProvider はCookieのセッションIDからセッションを取り出して
// echo.Context とリクエストの context の両方に載せる。
// Cookieが無い・不正なら新しいIDを発行する。
// skip に一致するパスではセッションを作らない（nil なら全パス対象）。
func SessionProvider(reg *session.Registry, cookieSecure bool, skip RouteMatcher) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skip != nil && skip(c.Request().URL.Path) {
				return next(c)
			}

			id := ""
			if ck, err := c.Cookie(SessionCookieName); err == nil {
				if _, err := uuid.Parse(ck.Value); err == nil {
					id = ck.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     SessionCookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   cookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			req := c.Request()
			s := reg.Get(req.Context(), id)
			c.Set(CtxSessionKey, s)
			c.SetRequest(req.WithContext(session.WithSession(req.Context(), s)))

			return next(c)
		}
	}
}
