// Package server exposes the planning operations over HTTP with JSON bodies,
// mirroring the original client contract: /api/generatePlan,
// /api/generateDetails and /api/generateShoppingList.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// New assembles the echo server with routes and dependencies.
func New(logger *slog.Logger, core Core, clip RecipeImporter) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	h := &Handler{Core: core, Clipper: clip, Logger: logger}

	e.GET("/health", h.Health)

	api := e.Group("/api", aiRateLimiter())
	api.POST("/generatePlan", h.GeneratePlan)
	api.POST("/generateDetails", h.GenerateDetails)
	api.POST("/generateShoppingList", h.GenerateShoppingList)
	api.POST("/importRecipe", h.ImportRecipe)

	return e
}

// NewHTTPServer creates a net/http server with sane timeouts. Model calls
// can legitimately take tens of seconds, including retries.
func NewHTTPServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(c.Request().Context(), level, "request completed", attrs...)
			return nil
		},
	})
}

// aiRateLimiter keeps the instance inside the upstream free-tier request
// budget regardless of how many clients hit it.
func aiRateLimiter() echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(15.0 / 60.0),
		Burst:     5,
		ExpiresIn: time.Minute,
	})
	return middleware.RateLimiter(store)
}
