// Package httpserver serves the query protocol over HTTP with echo, together
// with the prometheus scrape endpoint and a database health check.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/fekuna/catalog-service/internal/logger"
	"github.com/fekuna/catalog-service/internal/query"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

type Executor interface {
	Execute(ctx context.Context, req *query.Request) *query.Response
}

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	exec   Executor
	db     Pinger
	logger logger.ZapLogger
}

// New builds the echo instance with every route registered.
func New(exec Executor, db Pinger, log logger.ZapLogger) *echo.Echo {
	s := &Server{
		exec:   exec,
		db:     db,
		logger: log,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				log.Warn("http request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Debug("http request", fields...)
			return nil
		},
	}))

	e.POST("/query", s.Query)
	e.GET("/healthz", s.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return e
}

// Query runs a protocol request. Operation failures are reported inside the
// response body with status 200.
func (s *Server) Query(c echo.Context) error {
	var req query.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if id := c.Request().Header.Get(echo.HeaderXRequestID); id != "" && req.RequestID == "" {
		req.RequestID = id
	}

	resp := s.exec.Execute(c.Request().Context(), &req)
	c.Response().Header().Set(echo.HeaderXRequestID, resp.RequestID)
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
