package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the fatal dataset conditions. These cross package
// boundaries, so they live with the data model rather than in any one
// stage of the pipeline.
var (
	// ErrEmptyDataset is returned when an upload contains zero rows or
	// every row failed to parse. No chunks are ever written for such an
	// upload.
	ErrEmptyDataset = errors.New("dataset contains no valid transactions")

	// ErrNoData is returned when a chat question arrives for a user
	// namespace with no stored chunks (no prior successful upload).
	ErrNoData = errors.New("no expense data found for user")
)

// SchemaError reports required columns missing from an upload header.
// The whole upload is rejected.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// RowWarning records a single dropped row. Row-level failures are
// recovered by dropping the row; they accompany a successful upload
// result rather than failing it.
type RowWarning struct {
	Line    int    `json:"line"`
	Content string `json:"content"`
	Reason  string `json:"reason"`
}

// EmbeddingError wraps a failure of the external embedding service.
// Not retried within the request; the caller owns retry policy.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding service: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}
