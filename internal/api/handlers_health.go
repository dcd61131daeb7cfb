// handlers_health.go - Health check handlers
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/expense-assistant/backend/internal/llm"
)

// pingTimeout bounds the generator connectivity probe.
const pingTimeout = 5 * time.Second

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	pinger  llm.Pinger
}

// NewHealthHandler creates a new health handler. pinger may be nil when
// no connectivity probe is available.
func NewHealthHandler(version string, pinger llm.Pinger) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		pinger:  pinger,
	}
}

// HandleHealth returns server health status plus generator connectivity.
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	connected := false
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
		defer cancel()
		connected = h.pinger.Ping(ctx) == nil
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":             "ok",
		"version":            h.version,
		"generatorConnected": connected,
	})
}
