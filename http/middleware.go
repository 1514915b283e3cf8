package http

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/jaldrishti/jaldrishti"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	// HeaderAPIKey carries the key for protected prediction routes.
	HeaderAPIKey = "X-API-Key"

	// Default timeout for store operations.
	DefaultTimeout = 5 * time.Second

	// AnalyzeTimeout bounds a whole classification, including upstream calls.
	AnalyzeTimeout = 45 * time.Second
)

// registerMiddleware sets up all middleware for the server.
func (s *Server) registerMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Logger middleware with request ID
	s.echo.Use(s.requestLoggerMiddleware())

	// Metrics
	s.echo.Use(s.metrics.Middleware())

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, HeaderAPIKey},
	}))

	// Custom error handler
	s.echo.HTTPErrorHandler = s.httpErrorHandler
}

// requestLoggerMiddleware creates a middleware that logs requests with context.
// The request ID is also attached to the request context so services can log it.
func (s *Server) requestLoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			requestID := c.Response().Header().Get(echo.HeaderXRequestID)

			// Create request-scoped logger
			logger := s.logger.With(
				slog.String("request_id", requestID),
				slog.String("method", c.Request().Method),
				slog.String("path", c.Path()),
			)
			c.Set("logger", logger)
			c.SetRequest(c.Request().WithContext(
				jaldrishti.NewContextWithRequestID(c.Request().Context(), requestID),
			))

			err := next(c)

			// Log request completion
			status := c.Response().Status
			if err != nil {
				status = statusFromError(err)
			}

			logAttrs := []any{
				slog.Int("status", status),
				slog.Duration("duration", time.Since(start)),
			}

			if err != nil && status >= 500 {
				logAttrs = append(logAttrs, slog.String("error", err.Error()))
				logger.Error("request failed", logAttrs...)
			} else if status >= 500 {
				logger.Error("request completed with server error", logAttrs...)
			} else if status >= 400 {
				if err != nil {
					logAttrs = append(logAttrs, slog.String("error", err.Error()))
				}
				logger.Warn("request completed with client error", logAttrs...)
			} else {
				logger.Info("request completed", logAttrs...)
			}

			return err
		}
	}
}

// RequireAPIKey rejects requests without a matching X-API-Key header.
// It is a no-op when the server has no key configured.
func (s *Server) RequireAPIKey() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if s.APIKey == "" {
				return next(c)
			}
			key := c.Request().Header.Get(HeaderAPIKey)
			if subtle.ConstantTimeCompare([]byte(key), []byte(s.APIKey)) != 1 {
				s.getRequestLogger(c).Debug("api key rejected")
				return jaldrishti.Unauthorized("Could not validate credentials")
			}
			return next(c)
		}
	}
}

// getRequestLogger retrieves the request-scoped logger from context.
func (s *Server) getRequestLogger(c echo.Context) *slog.Logger {
	if logger, ok := c.Get("logger").(*slog.Logger); ok {
		return logger
	}
	return s.logger
}
