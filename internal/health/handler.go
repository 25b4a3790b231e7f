package health

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// livenessPayload is the static body served on the liveness probe.
var livenessPayload = map[string]string{
	"status": "healthy",
	"agent":  "weekly-budget",
}

// Handler serves the liveness and readiness endpoints.
type Handler struct {
	checker *Checker
}

// NewHandler constructs a Handler over the given checker.
func NewHandler(checker *Checker) *Handler {
	return &Handler{checker: checker}
}

// Register mounts the health routes on the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.Live)
	e.GET("/health/ready", h.Ready)
}

// Live reports process liveness with a static payload.
func (h *Handler) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, livenessPayload)
}

// Ready runs all component checks and reports 503 when any of them fails.
func (h *Handler) Ready(c echo.Context) error {
	results := h.checker.Check(c.Request().Context())

	status := http.StatusOK
	for _, state := range results {
		if state != "OK" {
			status = http.StatusServiceUnavailable
			break
		}
	}

	return c.JSON(status, results)
}
