package models

// ChunkKind tags a summary chunk for retrieval filtering.
type ChunkKind string

const (
	ChunkKindOverall  ChunkKind = "overall"
	ChunkKindCategory ChunkKind = "category"
	ChunkKindMonth    ChunkKind = "month"
	ChunkKindRecent   ChunkKind = "recent"
)

// Chunk is a self-contained text summary plus metadata, the unit of
// retrieval. Chunks are derived entirely from a transaction set and never
// mutated after creation; a re-upload regenerates and replaces all chunks
// for that user.
type Chunk struct {
	ID        string            `json:"id"` // unique within a user namespace
	Text      string            `json:"text"`
	Kind      ChunkKind         `json:"kind"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Embedding []float32         `json:"-"` // set at ingest time, not serialized
}

// ScoredChunk pairs a chunk with its relevance score from a retrieval
// query. Results are ordered by descending score.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}
