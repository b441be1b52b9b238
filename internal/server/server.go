package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/session"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// New は echo を組み立てる。
// 順序: recover -> アクセスログ -> CORS -> セッション -> 認証 -> サインイン要求
func New(cfg config.Config, reg *session.Registry, h Handlers, logger *zap.Logger) (*echo.Echo, error) {
	isPublic, err := middleware.NewRouteMatcher(middleware.DefaultPublicRoutes()...)
	if err != nil {
		return nil, err
	}
	sessionless, err := middleware.NewRouteMatcher(middleware.SessionlessRoutes()...)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover(logger))
	e.Use(middleware.RequestLogger(logger))
	if cfg.FEURL != "" {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     []string{cfg.FEURL},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
			AllowCredentials: true,
		}))
	}
	e.Use(middleware.SessionProvider(reg, cfg.CookieSecure, sessionless))
	e.Use(middleware.AuthJWT(cfg.AuthJWTSecret))
	if cfg.AuthJWTSecret != "" {
		e.Use(middleware.RequireSignIn(isPublic))
	} else {
		logger.Warn("AUTH_JWT_SECRET is empty, protected routes are open")
	}

	RegisterRoutes(e, h)
	return e, nil
}

// Start は ctx が終わるまで待ち受け、その後グレースフルに止める。
func Start(ctx context.Context, e *echo.Echo, addr string, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("server shutting down")
	return e.Shutdown(shutdownCtx)
}
