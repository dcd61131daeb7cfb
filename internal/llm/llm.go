// Package llm wraps the external language-model service behind small
// interfaces: embedding for retrieval and completion for answers. The
// same embedding model must be used for chunk ingestion and query-time
// embedding; mismatched models silently degrade retrieval quality.
package llm

import "context"

// Embedder turns text into a fixed-length numeric vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces a natural-language answer from assembled context and
// the raw question.
type Generator interface {
	Complete(ctx context.Context, contextText, question string) (string, error)
}

// Pinger is an optional connectivity probe, used by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}
