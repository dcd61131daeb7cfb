// handlers_chunks.go - Debug inspection of stored chunks
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/expense-assistant/backend/internal/vectorindex"
)

// ChunksHandlerImpl implements the ChunksHandler interface
type ChunksHandlerImpl struct {
	index vectorindex.Index
}

// NewChunksHandler creates a new chunks handler instance
func NewChunksHandler(index vectorindex.Index) ChunksHandler {
	return &ChunksHandlerImpl{index: index}
}

// HandleGetChunks returns the chunks stored for a user.
func (h *ChunksHandlerImpl) HandleGetChunks(c echo.Context) error {
	userID := c.Param("userId")
	if userID == "" {
		return NewValidationError("userId")
	}

	chunks, err := h.index.List(c.Request().Context(), userID)
	if err != nil {
		return NewInternalError("failed to list chunks", err)
	}
	if len(chunks) == 0 {
		return NewNotFoundError("chunks", userID)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"userId": userID,
		"chunks": chunks,
		"total":  len(chunks),
	})
}

// HandleGetChunksMsgpack returns the stored chunks in MessagePack format.
func (h *ChunksHandlerImpl) HandleGetChunksMsgpack(c echo.Context) error {
	userID := c.Param("userId")
	if userID == "" {
		return NewValidationError("userId")
	}

	chunks, err := h.index.List(c.Request().Context(), userID)
	if err != nil {
		return NewInternalError("failed to list chunks", err)
	}
	if len(chunks) == 0 {
		return NewNotFoundError("chunks", userID)
	}

	data, err := msgpack.Marshal(map[string]interface{}{
		"userId": userID,
		"chunks": chunks,
		"total":  len(chunks),
	})
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}

	return c.Blob(http.StatusOK, "application/msgpack", data)
}
