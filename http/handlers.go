package http

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/jaldrishti/jaldrishti"
	"github.com/labstack/echo/v4"
)

// withTimeout creates a context with a timeout for handler operations.
func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), DefaultTimeout)
}

// parseUUID parses a UUID from a string, returning a domain error if invalid.
func parseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}, jaldrishti.Invalid("Invalid ID format")
	}
	return id, nil
}

// requireParam extracts a required route parameter, returning error if empty.
func requireParam(c echo.Context, name string) (string, error) {
	value := c.Param(name)
	if value == "" {
		return "", jaldrishti.Invalid("%s is required", name)
	}
	return value, nil
}

// requireUUIDParam extracts and parses a required UUID route parameter.
func requireUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	value, err := requireParam(c, name)
	if err != nil {
		return uuid.UUID{}, err
	}
	return parseUUID(value)
}

// floatQuery parses an optional non-negative float query parameter.
func floatQuery(c echo.Context, name string, def float64) (float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, jaldrishti.ErrorWithFields(map[string]string{name: "must be a non-negative number"})
	}
	return v, nil
}

// bind binds the request body to a struct and validates it.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return jaldrishti.Invalid("Invalid request body")
	}
	if err := c.Validate(v); err != nil {
		return err
	}
	return nil
}

// log returns the request-scoped logger.
func (s *Server) log(c echo.Context) *slog.Logger {
	return s.getRequestLogger(c)
}

// Health handlers

func (s *Server) handleHealthCheck(c echo.Context) error {
	return RespondOK(c, map[string]string{"status": "ok"})
}

func (s *Server) handleLivenessCheck(c echo.Context) error {
	return RespondOK(c, map[string]string{"status": "alive"})
}

// ReadinessResponse reports what the service has loaded.
type ReadinessResponse struct {
	Status       string `json:"status"`
	WardsLoaded  int    `json:"wards_loaded"`
	Locations    int    `json:"locations"`
	TotalReports int    `json:"total_reports"`
}

func (s *Server) handleReadinessCheck(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	resp := ReadinessResponse{Status: "ready"}
	if s.reference != nil {
		resp.WardsLoaded = len(s.reference.Wards)
		resp.Locations = len(s.reference.Locations)
	}
	if s.reportService != nil {
		n, err := s.reportService.CountReports(ctx)
		if err != nil {
			return err
		}
		resp.TotalReports = n
	}
	return RespondOK(c, resp)
}
