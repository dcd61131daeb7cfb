package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expense-assistant/backend/internal/models"
	"github.com/expense-assistant/backend/internal/testutil"
)

func seedChunks() []models.Chunk {
	// Embeddings chosen so similarity to the query vector {1,0,0} ranks
	// recent > category:food > month > overall.
	return []models.Chunk{
		{
			ID: "overall", Kind: models.ChunkKindOverall,
			Text:      "Overall spending summary\nTotal expenses: $65.40",
			Metadata:  map[string]string{"total": "65.40"},
			Embedding: []float32{0.1, 1, 0},
		},
		{
			ID: "category:food", Kind: models.ChunkKindCategory,
			Text:      "Category: Food\nTotal spent: $53.40",
			Metadata:  map[string]string{"category": "Food"},
			Embedding: []float32{0.8, 0.6, 0},
		},
		{
			ID: "month:2026-01", Kind: models.ChunkKindMonth,
			Text:      "Month: 2026-01\nTotal expenses: $65.40",
			Metadata:  map[string]string{"month": "2026-01"},
			Embedding: []float32{0.5, 0.8, 0},
		},
		{
			ID: "recent", Kind: models.ChunkKindRecent,
			Text:      "Most recent transactions:\n- 2026-01-04: Groceries ($48.90, Food)",
			Metadata:  map[string]string{"count": "3"},
			Embedding: []float32{1, 0.1, 0},
		},
	}
}

func newTestAssembler(t *testing.T, opts Options) (*Assembler, *testutil.MemoryIndex, *testutil.StubEmbedder) {
	t.Helper()
	index := testutil.NewMemoryIndex()
	require.NoError(t, index.ReplaceNamespace(context.Background(), "u1", seedChunks()))
	embedder := &testutil.StubEmbedder{Vector: []float32{1, 0, 0}}
	return NewAssembler(index, embedder, opts), index, embedder
}

func TestAssemble_NoData(t *testing.T) {
	a, _, embedder := newTestAssembler(t, DefaultOptions())

	_, err := a.Assemble(context.Background(), "nobody", "how much did I spend")
	assert.ErrorIs(t, err, models.ErrNoData)
	assert.Equal(t, 0, embedder.Calls, "no-data guard must fire before embedding")
}

func TestAssemble_EmbeddingFailure(t *testing.T) {
	a, _, embedder := newTestAssembler(t, DefaultOptions())
	embedder.Err = testutil.ErrUpstream

	_, err := a.Assemble(context.Background(), "u1", "how much did I spend")
	var embErr *models.EmbeddingError
	assert.ErrorAs(t, err, &embErr)
	assert.ErrorIs(t, err, testutil.ErrUpstream)
}

func TestAssemble_AggregateForcesOverall(t *testing.T) {
	// TopK of 2 retrieves only the chunks most similar to the query; the
	// overall chunk ranks last by similarity and would be cut without the
	// override.
	opts := DefaultOptions()
	opts.TopK = 2
	a, _, _ := newTestAssembler(t, opts)

	prompt, err := a.Assemble(context.Background(), "u1", "How much did I spend in total?")
	require.NoError(t, err)

	require.NotEmpty(t, prompt.Chunks)
	assert.Equal(t, "overall", prompt.Chunks[0].Chunk.ID, "overall chunk must lead aggregate context")
	assert.Contains(t, prompt.Context, "Overall spending summary")
}

func TestAssemble_CategoryBoost(t *testing.T) {
	// A large boost pushes the matching category chunk past the
	// similarity leader.
	opts := DefaultOptions()
	opts.MatchBoost = 0.5
	a, _, _ := newTestAssembler(t, opts)

	prompt, err := a.Assemble(context.Background(), "u1", "how much on food lately")
	require.NoError(t, err)

	require.NotEmpty(t, prompt.Chunks)
	assert.Equal(t, "category:food", prompt.Chunks[0].Chunk.ID)
}

func TestAssemble_TemporalBoost(t *testing.T) {
	opts := DefaultOptions()
	opts.MatchBoost = 0.5
	a, _, _ := newTestAssembler(t, opts)

	prompt, err := a.Assemble(context.Background(), "u1", "spending in january 2026")
	require.NoError(t, err)

	require.NotEmpty(t, prompt.Chunks)
	assert.Equal(t, "month:2026-01", prompt.Chunks[0].Chunk.ID)
}

func TestAssemble_GeneralUsesSimilarityOrder(t *testing.T) {
	a, _, _ := newTestAssembler(t, DefaultOptions())

	prompt, err := a.Assemble(context.Background(), "u1", "anything interesting?")
	require.NoError(t, err)

	require.NotEmpty(t, prompt.Chunks)
	assert.Equal(t, "recent", prompt.Chunks[0].Chunk.ID)
	assert.Equal(t, []string{"recent", "category", "month", "overall"}, prompt.Sources())
}

func TestAssemble_MaxChunksCap(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxChunks = 2
	a, _, _ := newTestAssembler(t, opts)

	prompt, err := a.Assemble(context.Background(), "u1", "anything interesting?")
	require.NoError(t, err)
	assert.Len(t, prompt.Chunks, 2)
}

func TestAssemble_CharBudgetKeepsTopChunk(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxContextChars = 10 // smaller than any single chunk text
	a, _, _ := newTestAssembler(t, opts)

	prompt, err := a.Assemble(context.Background(), "u1", "anything interesting?")
	require.NoError(t, err)
	assert.Len(t, prompt.Chunks, 1, "top chunk survives even over the char budget")
	assert.NotEmpty(t, prompt.Context)
}

func TestAssemble_ContextJoinsChunkTexts(t *testing.T) {
	a, _, _ := newTestAssembler(t, DefaultOptions())

	prompt, err := a.Assemble(context.Background(), "u1", "anything interesting?")
	require.NoError(t, err)

	parts := strings.Split(prompt.Context, "\n\n")
	assert.Len(t, parts, len(prompt.Chunks))
}

func TestAssemble_QueryErrorPropagates(t *testing.T) {
	a, index, _ := newTestAssembler(t, DefaultOptions())
	index.QueryErr = errors.New("index offline")

	_, err := a.Assemble(context.Background(), "u1", "how much on food")
	assert.ErrorContains(t, err, "index offline")
}
