package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RespondOK sends a 200 OK response with the given data.
func RespondOK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}

// RespondCreated sends a 201 Created response with the given data.
func RespondCreated(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, data)
}

// ListResponse represents a list response.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

// RespondList sends a list response, never encoding a nil slice as null.
func RespondList[T any](c echo.Context, data []T) error {
	if data == nil {
		data = []T{}
	}
	return c.JSON(http.StatusOK, ListResponse[T]{
		Data:  data,
		Total: len(data),
	})
}
