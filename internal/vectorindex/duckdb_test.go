package vectorindex

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/expense-assistant/backend/internal/models"
)

func createTestStore(t *testing.T) *DuckStore {
	t.Helper()
	store, err := NewDuckStore(filepath.Join(t.TempDir(), "chunks.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testChunks() []models.Chunk {
	return []models.Chunk{
		{
			ID: "overall", Kind: models.ChunkKindOverall,
			Text:      "Overall spending summary",
			Metadata:  map[string]string{"total": "65.40", "count": "3"},
			Embedding: []float32{0.1, 1, 0},
		},
		{
			ID: "category:food", Kind: models.ChunkKindCategory,
			Text:      "Category: Food",
			Metadata:  map[string]string{"category": "Food"},
			Embedding: []float32{0.8, 0.6, 0},
		},
		{
			ID: "recent", Kind: models.ChunkKindRecent,
			Text:      "Most recent transactions:",
			Metadata:  map[string]string{"count": "3"},
			Embedding: []float32{1, 0.1, 0},
		},
	}
}

func TestDuckStore_RoundTrip(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	if err := store.ReplaceNamespace(ctx, "u1", testChunks()); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	chunks, err := store.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	// Insertion order and full field round-trip.
	if chunks[0].ID != "overall" || chunks[2].ID != "recent" {
		t.Errorf("unexpected order: %s, %s, %s", chunks[0].ID, chunks[1].ID, chunks[2].ID)
	}
	got := chunks[1]
	if got.Kind != models.ChunkKindCategory {
		t.Errorf("expected category kind, got %s", got.Kind)
	}
	if got.Metadata["category"] != "Food" {
		t.Errorf("metadata lost: %v", got.Metadata)
	}
	if len(got.Embedding) != 3 || got.Embedding[0] != 0.8 {
		t.Errorf("embedding lost: %v", got.Embedding)
	}
}

func TestDuckStore_ReplaceSwapsWholeSet(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	if err := store.ReplaceNamespace(ctx, "u1", testChunks()); err != nil {
		t.Fatalf("first replace failed: %v", err)
	}

	replacement := []models.Chunk{
		{ID: "overall", Kind: models.ChunkKindOverall, Text: "new summary", Embedding: []float32{1, 0, 0}},
	}
	if err := store.ReplaceNamespace(ctx, "u1", replacement); err != nil {
		t.Fatalf("second replace failed: %v", err)
	}

	chunks, err := store.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk after replace, got %d", len(chunks))
	}
	if chunks[0].Text != "new summary" {
		t.Errorf("old chunk text survived: %q", chunks[0].Text)
	}
}

func TestDuckStore_NamespaceIsolation(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	if err := store.ReplaceNamespace(ctx, "u1", testChunks()); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	t.Run("count", func(t *testing.T) {
		n, err := store.Count(ctx, "u2")
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if n != 0 {
			t.Errorf("expected 0 chunks for u2, got %d", n)
		}
	})

	t.Run("query", func(t *testing.T) {
		hits, err := store.Query(ctx, "u2", []float32{1, 0, 0}, 5)
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if len(hits) != 0 {
			t.Errorf("expected no hits for u2, got %d", len(hits))
		}
	})

	t.Run("replace does not touch other namespace", func(t *testing.T) {
		if err := store.ReplaceNamespace(ctx, "u2", testChunks()[:1]); err != nil {
			t.Fatalf("replace failed: %v", err)
		}
		n, err := store.Count(ctx, "u1")
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if n != 3 {
			t.Errorf("u1 chunk set disturbed: %d", n)
		}
	})
}

func TestDuckStore_QueryRanking(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	if err := store.ReplaceNamespace(ctx, "u1", testChunks()); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	hits, err := store.Query(ctx, "u1", []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Chunk.ID != "recent" {
		t.Errorf("expected recent first, got %s", hits[0].Chunk.ID)
	}
	if hits[1].Chunk.ID != "category:food" {
		t.Errorf("expected category:food second, got %s", hits[1].Chunk.ID)
	}
	if hits[0].Score < hits[1].Score {
		t.Errorf("scores not descending: %f < %f", hits[0].Score, hits[1].Score)
	}
}

func TestDuckStore_GetByKindAndCategories(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	if err := store.ReplaceNamespace(ctx, "u1", testChunks()); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	overall, err := store.GetByKind(ctx, "u1", models.ChunkKindOverall)
	if err != nil {
		t.Fatalf("get by kind failed: %v", err)
	}
	if len(overall) != 1 || overall[0].ID != "overall" {
		t.Errorf("unexpected overall chunks: %v", overall)
	}

	cats, err := store.Categories(ctx, "u1")
	if err != nil {
		t.Fatalf("categories failed: %v", err)
	}
	if len(cats) != 1 || cats[0] != "Food" {
		t.Errorf("expected [Food], got %v", cats)
	}
}

func TestDuckStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chunks.db")

	store, err := NewDuckStore(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := store.ReplaceNamespace(context.Background(), "u1", testChunks()); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	reopened, err := NewDuckStore(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	n, err := reopened.Count(context.Background(), "u1")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 chunks after reopen, got %d", n)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}
