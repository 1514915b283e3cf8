package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jaldrishti/jaldrishti"
	"github.com/labstack/echo/v4"
)

// errorStatusCode maps domain error codes to HTTP status codes.
func errorStatusCode(code string) int {
	switch code {
	case jaldrishti.ENOTFOUND:
		return http.StatusNotFound
	case jaldrishti.EINVALID:
		return http.StatusBadRequest
	case jaldrishti.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case jaldrishti.ECONFLICT:
		return http.StatusConflict
	case jaldrishti.ERATELIMIT:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// statusFromError returns the status an error will be rendered with.
func statusFromError(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return errorStatusCode(jaldrishti.ErrorCode(err))
}

// ErrorResponse represents the JSON error response format.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// HandleError converts domain errors to appropriate HTTP responses.
// It logs internal errors and returns user-safe messages.
func HandleError(c echo.Context, logger *slog.Logger, err error) error {
	code := jaldrishti.ErrorCode(err)
	message := jaldrishti.ErrorMessage(err)
	fields := jaldrishti.ErrorFields(err)
	status := errorStatusCode(code)

	// Log internal errors with full details
	if code == jaldrishti.EINTERNAL {
		logger.Error("internal error",
			slog.String("error", err.Error()),
			slog.String("path", c.Path()),
			slog.String("method", c.Request().Method),
		)
		// Don't expose internal error details to clients
		message = "An internal error occurred."
	}

	return c.JSON(status, ErrorResponse{
		Error:   code,
		Message: message,
		Fields:  fields,
	})
}

// httpErrorHandler renders every error returned from a handler or middleware.
func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	// Echo's own errors (unknown route, bad method, body too large) keep their status.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		_ = c.JSON(he.Code, ErrorResponse{
			Error:   httpErrorCode(he.Code),
			Message: msg,
		})
		return
	}

	_ = HandleError(c, s.getRequestLogger(c), err)
}

// httpErrorCode maps a status code back to the closest domain error code.
func httpErrorCode(status int) string {
	switch status {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return jaldrishti.ENOTFOUND
	case http.StatusUnauthorized, http.StatusForbidden:
		return jaldrishti.EUNAUTHORIZED
	case http.StatusTooManyRequests:
		return jaldrishti.ERATELIMIT
	case http.StatusConflict:
		return jaldrishti.ECONFLICT
	}
	if status >= 400 && status < 500 {
		return jaldrishti.EINVALID
	}
	return jaldrishti.EINTERNAL
}
