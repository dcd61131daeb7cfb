// Package vectorindex persists summary chunks with their embeddings,
// namespaced per user, and answers cosine-similarity queries over them.
package vectorindex

import (
	"context"
	"math"

	"github.com/expense-assistant/backend/internal/models"
)

// Index is the vector store collaborator contract. Implementations must
// make ReplaceNamespace atomic from the caller's perspective: a reader
// never observes a half-old, half-new chunk set.
type Index interface {
	// ReplaceNamespace atomically swaps the full chunk set for a
	// namespace. Chunks must carry embeddings.
	ReplaceNamespace(ctx context.Context, namespace string, chunks []models.Chunk) error

	// Query returns the k nearest chunks by cosine similarity within a
	// namespace, descending score. An empty namespace yields an empty
	// result, not an error.
	Query(ctx context.Context, namespace string, vector []float32, k int) ([]models.ScoredChunk, error)

	// List returns every chunk stored for a namespace in insertion order.
	List(ctx context.Context, namespace string) ([]models.Chunk, error)

	// GetByKind returns the stored chunks of one kind for a namespace.
	GetByKind(ctx context.Context, namespace string, kind models.ChunkKind) ([]models.Chunk, error)

	// Categories returns the category names present in a namespace's
	// category-kind chunk metadata.
	Categories(ctx context.Context, namespace string) ([]string, error)

	// Count reports how many chunks a namespace holds.
	Count(ctx context.Context, namespace string) (int, error)

	Close() error
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths or zero-norm vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
