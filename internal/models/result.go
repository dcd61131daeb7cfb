package models

import "time"

// UploadResult summarizes a successful expense upload. Warnings list the
// rows that were dropped during normalization.
type UploadResult struct {
	UploadID         string       `json:"uploadId"`
	UserID           string       `json:"userId"`
	FileID           string       `json:"fileId,omitempty"`
	TransactionCount int          `json:"transactionCount"`
	ChunkCount       int          `json:"chunkCount"`
	Warnings         []RowWarning `json:"warnings,omitempty"`
	UploadedAt       time.Time    `json:"uploadedAt"`
}

// FileInfo is metadata about a raw uploaded file kept for inspection and
// re-ingestion.
type FileInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}
