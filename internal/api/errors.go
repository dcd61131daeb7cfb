// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/expense-assistant/backend/internal/models"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewUpstreamError creates a 502 error for external-dependency failures
func NewUpstreamError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadGateway,
		Code:    "UPSTREAM_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// FromDomainError translates the core pipeline errors into API errors.
// Anything unrecognized becomes a 500.
func FromDomainError(err error) *APIError {
	var schemaErr *models.SchemaError
	if errors.As(err, &schemaErr) {
		return &APIError{
			Status:  http.StatusBadRequest,
			Code:    "SCHEMA_ERROR",
			Message: schemaErr.Error(),
		}
	}

	if errors.Is(err, models.ErrEmptyDataset) {
		return &APIError{
			Status:  http.StatusBadRequest,
			Code:    "EMPTY_DATASET",
			Message: "upload contains no valid transactions",
			Details: err.Error(),
		}
	}

	if errors.Is(err, models.ErrNoData) {
		return &APIError{
			Status:  http.StatusNotFound,
			Code:    "NO_DATA",
			Message: "no expense data found, upload a file first",
		}
	}

	var embedErr *models.EmbeddingError
	if errors.As(err, &embedErr) {
		return NewUpstreamError("embedding service failed", embedErr)
	}

	return NewInternalError("request failed", err)
}

// ErrorHandler is the echo HTTPErrorHandler for the service.
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	switch e := err.(type) {
	case *APIError:
		apiErr = e
	case *echo.HTTPError:
		apiErr = &APIError{
			Status:  e.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", e.Message),
		}
	default:
		apiErr = FromDomainError(err)
	}

	c.JSON(apiErr.Status, apiErr)
}
