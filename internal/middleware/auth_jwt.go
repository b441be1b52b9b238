package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey  = "user_id" // string（認証プロバイダのユーザーID）
	CtxSessionKey = "session" // *session.Session
)

// 認証プロバイダがフロントに置くセッショントークン
const sessionTokenCookie = "__session"

// AuthJWT はトークンがあれば検証して user_id を載せる。
// 無い・不正な場合は匿名のまま通す（拒否は RequireSignIn）。
func AuthJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawToken := tokenFromRequest(c)
			if rawToken == "" || secret == "" {
				return next(c)
			}

			//JWTをパースして検証する
			token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(secret), nil
			})
			if err != nil || token == nil || !token.Valid {
				return next(c)
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return next(c)
			}

			//user_idを取り出す
			if sub, ok := claims["sub"].(string); ok && strings.TrimSpace(sub) != "" {
				c.Set(CtxUserIDKey, sub)
			}
			return next(c)
		}
	}
}

// RequireSignIn は公開ルート以外でサインインを要求する。
func RequireSignIn(isPublic RouteMatcher) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isPublic(c.Request().URL.Path) {
				return next(c)
			}
			if _, ok := UserID(c); !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			return next(c)
		}
	}
}

// UserID はサインイン済みならユーザーIDを返す。
func UserID(c echo.Context) (string, bool) {
	id, ok := c.Get(CtxUserIDKey).(string)
	return id, ok && id != ""
}

// Authorization: Bearer を優先し、無ければCookie
func tokenFromRequest(c echo.Context) string {
	if authz := c.Request().Header.Get("Authorization"); authz != "" {
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if ck, err := c.Cookie(sessionTokenCookie); err == nil {
		return strings.TrimSpace(ck.Value)
	}
	return ""
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
