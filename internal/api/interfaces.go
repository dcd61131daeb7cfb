// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/expense-assistant/backend/internal/models"
)

// UploadHandler handles expense upload operations
type UploadHandler interface {
	HandleUploadExpenses(c echo.Context) error
	HandleRecentFiles(c echo.Context) error
}

// ChatHandler handles chat questions about uploaded expenses
type ChatHandler interface {
	HandleChat(c echo.Context) error
}

// ChunksHandler exposes stored chunks for debugging
type ChunksHandler interface {
	HandleGetChunks(c echo.Context) error
	HandleGetChunksMsgpack(c echo.Context) error
}

// HealthHandler reports service and generator health
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// Ingestor is the upload pipeline the upload handler drives.
type Ingestor interface {
	Upload(ctx context.Context, userID, name string, payload []byte) (*models.UploadResult, error)
}
