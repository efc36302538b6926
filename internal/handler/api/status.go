package api

import (
	"time"

	"MarketPulse/internal/usecase"
	xhttp "MarketPulse/pkg/http"
	xlogger "MarketPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StatusHandler exposes read-only operational endpoints for daemon mode.
type StatusHandler struct {
	logger *xlogger.Logger
	runner *usecase.ScanRunner
	start  time.Time
}

func NewStatusHandler(logger *xlogger.Logger, runner *usecase.ScanRunner) *StatusHandler {
	return &StatusHandler{logger: logger, runner: runner, start: time.Now()}
}

func (h *StatusHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	e.GET("/status", h.Status)
}

func (h *StatusHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{
		"status": "ok",
		"uptime": time.Since(h.start).Round(time.Second).String(),
	})
}

// Status returns the most recent run report, or 503 before the first run completes.
func (h *StatusHandler) Status(c echo.Context) error {
	report := h.runner.LastReport()
	if report == nil {
		return xhttp.UnavailableResponse(c, "no scan completed yet")
	}
	return xhttp.SuccessResponse(c, report)
}
