// handlers_upload.go - Expense upload handlers
package api

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/expense-assistant/backend/internal/storage"
)

// UploadHandlerImpl implements the UploadHandler interface
type UploadHandlerImpl struct {
	ingestor Ingestor
	store    storage.Store
}

// NewUploadHandler creates a new upload handler instance
func NewUploadHandler(ingestor Ingestor, store storage.Store) UploadHandler {
	return &UploadHandlerImpl{
		ingestor: ingestor,
		store:    store,
	}
}

// HandleUploadExpenses accepts an expense CSV as base64 JSON, runs the
// ingest pipeline and replaces the user's chunk set.
func (h *UploadHandlerImpl) HandleUploadExpenses(c echo.Context) error {
	var req uploadExpensesRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	if err := req.validate(); err != nil {
		return err
	}

	decoded, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return NewBadRequestError("invalid base64 data", err)
	}

	result, err := h.ingestor.Upload(c.Request().Context(), req.UserID, req.Name, decoded)
	if err != nil {
		return err // translated by the error handler
	}

	return c.JSON(http.StatusCreated, result)
}

// HandleRecentFiles returns a user's recently uploaded files.
func (h *UploadHandlerImpl) HandleRecentFiles(c echo.Context) error {
	userID := c.Param("userId")
	if userID == "" {
		return NewValidationError("userId")
	}

	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	files, err := h.store.List(userID, limit)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}
	return c.JSON(http.StatusOK, files)
}
