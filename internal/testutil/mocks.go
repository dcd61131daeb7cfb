// mocks.go - In-memory collaborator fakes for testing
package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/expense-assistant/backend/internal/models"
	"github.com/expense-assistant/backend/internal/vectorindex"
)

// MemoryIndex implements vectorindex.Index in memory.
type MemoryIndex struct {
	mu         sync.RWMutex
	namespaces map[string][]models.Chunk
	QueryErr   error
	ReplaceErr error
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{namespaces: make(map[string][]models.Chunk)}
}

func (m *MemoryIndex) ReplaceNamespace(_ context.Context, namespace string, chunks []models.Chunk) error {
	if m.ReplaceErr != nil {
		return m.ReplaceErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]models.Chunk, len(chunks))
	copy(stored, chunks)
	m.namespaces[namespace] = stored
	return nil
}

func (m *MemoryIndex) Query(_ context.Context, namespace string, vector []float32, k int) ([]models.ScoredChunk, error) {
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	chunks := m.namespaces[namespace]
	scored := make([]models.ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		scored = append(scored, models.ScoredChunk{
			Chunk: c,
			Score: vectorindex.CosineSimilarity(vector, c.Embedding),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Chunk.ID < scored[j].Chunk.ID
	})
	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func (m *MemoryIndex) List(_ context.Context, namespace string) ([]models.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chunks := make([]models.Chunk, len(m.namespaces[namespace]))
	copy(chunks, m.namespaces[namespace])
	return chunks, nil
}

func (m *MemoryIndex) GetByKind(_ context.Context, namespace string, kind models.ChunkKind) ([]models.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Chunk
	for _, c := range m.namespaces[namespace] {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MemoryIndex) Categories(_ context.Context, namespace string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var names []string
	for _, c := range m.namespaces[namespace] {
		if c.Kind == models.ChunkKindCategory && c.Metadata["category"] != "" {
			names = append(names, c.Metadata["category"])
		}
	}
	return names, nil
}

func (m *MemoryIndex) Count(_ context.Context, namespace string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.namespaces[namespace]), nil
}

func (m *MemoryIndex) Close() error { return nil }

// StubEmbedder returns canned vectors. When VectorFor is nil every text
// embeds to Vector.
type StubEmbedder struct {
	Vector    []float32
	VectorFor func(text string) []float32
	Err       error
	Calls     int
}

func (s *StubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	if s.VectorFor != nil {
		return s.VectorFor(text), nil
	}
	if s.Vector != nil {
		return s.Vector, nil
	}
	return []float32{1, 0, 0}, nil
}

// StubGenerator returns a canned answer and records invocations.
type StubGenerator struct {
	Answer      string
	Err         error
	Calls       int
	LastContext string
}

func (s *StubGenerator) Complete(_ context.Context, contextText, question string) (string, error) {
	s.Calls++
	s.LastContext = contextText
	if s.Err != nil {
		return "", s.Err
	}
	if s.Answer == "" {
		return "stub answer", nil
	}
	return s.Answer, nil
}

// ErrUpstream is a generic upstream failure for fakes.
var ErrUpstream = errors.New("upstream failure")
