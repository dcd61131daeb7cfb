package vectorindex

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/marcboeker/go-duckdb"

	"github.com/expense-assistant/backend/internal/models"
)

// DuckStore is a DuckDB-backed Index. The chunk set per namespace is small
// and bounded (one overall chunk, one per category, one per month, one
// recent chunk), so similarity ranking loads the namespace and scores it
// in process; DuckDB provides durable storage across restarts and the
// transactional delete+insert that makes namespace replacement atomic.
type DuckStore struct {
	db     *sql.DB
	dbPath string
}

// NewDuckStore opens (or creates) the chunk database at dbPath.
func NewDuckStore(dbPath string) (*DuckStore, error) {
	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='256MB'",
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS chunks (
			namespace VARCHAR NOT NULL,
			chunk_id  VARCHAR NOT NULL,
			kind      VARCHAR NOT NULL,
			text      VARCHAR NOT NULL,
			metadata  VARCHAR,
			embedding VARCHAR NOT NULL,
			seq       INTEGER NOT NULL,
			PRIMARY KEY (namespace, chunk_id)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating chunks table: %w", err)
	}

	return &DuckStore{db: db, dbPath: dbPath}, nil
}

// ReplaceNamespace swaps the namespace's chunk set inside one transaction,
// so a concurrent reader sees either the old set or the new one, never a
// mix.
func (s *DuckStore) ReplaceNamespace(ctx context.Context, namespace string, chunks []models.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning replace transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE namespace = ?`, namespace); err != nil {
		return fmt.Errorf("clearing namespace %s: %w", namespace, err)
	}

	for i, c := range chunks {
		metadata, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata for chunk %s: %w", c.ID, err)
		}
		embedding, err := json.Marshal(c.Embedding)
		if err != nil {
			return fmt.Errorf("encoding embedding for chunk %s: %w", c.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO chunks (namespace, chunk_id, kind, text, metadata, embedding, seq) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			namespace, c.ID, string(c.Kind), c.Text, string(metadata), string(embedding), i,
		)
		if err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing replace for namespace %s: %w", namespace, err)
	}
	return nil
}

// Query loads the namespace's chunks and ranks them by cosine similarity,
// descending, with chunk id as the deterministic tie-break.
func (s *DuckStore) Query(ctx context.Context, namespace string, vector []float32, k int) ([]models.ScoredChunk, error) {
	chunks, err := s.List(ctx, namespace)
	if err != nil {
		return nil, err
	}
	if k <= 0 || len(chunks) == 0 {
		return nil, nil
	}

	scored := make([]models.ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		scored = append(scored, models.ScoredChunk{
			Chunk: c,
			Score: CosineSimilarity(vector, c.Embedding),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Chunk.ID < scored[j].Chunk.ID
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// List returns all chunks for a namespace in their insertion order.
func (s *DuckStore) List(ctx context.Context, namespace string) ([]models.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chunk_id, kind, text, metadata, embedding FROM chunks WHERE namespace = ? ORDER BY seq`,
		namespace,
	)
	if err != nil {
		return nil, fmt.Errorf("querying namespace %s: %w", namespace, err)
	}
	defer rows.Close()

	var chunks []models.Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// GetByKind returns the namespace's chunks of one kind.
func (s *DuckStore) GetByKind(ctx context.Context, namespace string, kind models.ChunkKind) ([]models.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chunk_id, kind, text, metadata, embedding FROM chunks WHERE namespace = ? AND kind = ? ORDER BY seq`,
		namespace, string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("querying namespace %s kind %s: %w", namespace, kind, err)
	}
	defer rows.Close()

	var chunks []models.Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// Categories collects the category names present in the namespace's
// category chunks.
func (s *DuckStore) Categories(ctx context.Context, namespace string) ([]string, error) {
	chunks, err := s.GetByKind(ctx, namespace, models.ChunkKindCategory)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if name := c.Metadata["category"]; name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// Count reports the number of chunks stored for a namespace.
func (s *DuckStore) Count(ctx context.Context, namespace string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE namespace = ?`, namespace).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting namespace %s: %w", namespace, err)
	}
	return n, nil
}

// Close releases the underlying database.
func (s *DuckStore) Close() error {
	return s.db.Close()
}

func scanChunk(rows *sql.Rows) (models.Chunk, error) {
	var c models.Chunk
	var kind, metadata, embedding string
	if err := rows.Scan(&c.ID, &kind, &c.Text, &metadata, &embedding); err != nil {
		return models.Chunk{}, fmt.Errorf("scanning chunk row: %w", err)
	}
	c.Kind = models.ChunkKind(kind)
	if metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &c.Metadata); err != nil {
			return models.Chunk{}, fmt.Errorf("decoding metadata for chunk %s: %w", c.ID, err)
		}
	}
	if err := json.Unmarshal([]byte(embedding), &c.Embedding); err != nil {
		return models.Chunk{}, fmt.Errorf("decoding embedding for chunk %s: %w", c.ID, err)
	}
	return c, nil
}
