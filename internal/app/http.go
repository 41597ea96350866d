package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Ramsey-B/kitchin/pkg/middleware"
	"github.com/Ramsey-B/kitchin/pkg/routes/mealplanner"
	"github.com/Ramsey-B/kitchin/pkg/routes/shopping"
	syncroutes "github.com/Ramsey-B/kitchin/pkg/routes/sync"
	"github.com/Ramsey-B/kitchin/pkg/routes/views"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

// Router builds the echo instance serving the API, health and metrics endpoints.
func (a *App) Router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(a.logger)

	e.Use(echomiddleware.Recover())
	e.Use(otelecho.Middleware(a.cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(a.logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: a.cfg.AllowOrigins,
		AllowMethods: a.cfg.AllowMethods,
	}))

	a.health.RegisterRoutes(e.Group(""))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	mealplanner.NewHandler(a.contract).Register(api)
	shopping.NewHandler(a.contract).Register(api)
	views.NewHandler(a.store).Register(api)
	syncroutes.NewHandler(a.sync, a.hub).Register(api)

	return e
}

func (a *App) startHTTP(context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", a.cfg.Port, err)
	}

	a.server = &http.Server{
		Handler:           a.Router(),
		ReadTimeout:       time.Duration(a.cfg.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(a.cfg.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(a.cfg.HttpServerIdleTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(a.cfg.ReadHeaderTimeoutSeconds) * time.Second,
		MaxHeaderBytes:    a.cfg.MaxHeaderBytes,
	}

	go func() {
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.WithError(err).Error("http server stopped unexpectedly")
		}
	}()
	return nil
}

func (a *App) stopHTTP(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}
