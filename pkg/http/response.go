package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse is the standard envelope for ops endpoints.
type APIResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SuccessResponse writes a 200 response.
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, APIResponse{
		Status:  http.StatusOK,
		Message: http.StatusText(http.StatusOK),
		Data:    data,
	})
}

// NotFoundResponse writes a 404 response.
func NotFoundResponse(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, APIResponse{
		Status:  http.StatusNotFound,
		Message: http.StatusText(http.StatusNotFound),
		Data:    message,
	})
}

// UnavailableResponse writes a 503 response.
func UnavailableResponse(c echo.Context, message string) error {
	return c.JSON(http.StatusServiceUnavailable, APIResponse{
		Status:  http.StatusServiceUnavailable,
		Message: http.StatusText(http.StatusServiceUnavailable),
		Data:    message,
	})
}
