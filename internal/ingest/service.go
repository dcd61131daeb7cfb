// Package ingest runs the upload pipeline: normalize the raw payload,
// synthesize summary chunks, embed them, and atomically replace the
// user's namespace in the vector index.
package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/expense-assistant/backend/internal/chunker"
	"github.com/expense-assistant/backend/internal/llm"
	"github.com/expense-assistant/backend/internal/models"
	"github.com/expense-assistant/backend/internal/normalizer"
	"github.com/expense-assistant/backend/internal/storage"
	"github.com/expense-assistant/backend/internal/vectorindex"
)

// Service coordinates uploads. Concurrent uploads for the same user
// serialize on a per-user lock so a replace never interleaves with
// another; different users proceed independently.
type Service struct {
	index        vectorindex.Index
	embedder     llm.Embedder
	store        storage.Store // optional raw-upload archive
	recentWindow int
	log          zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService wires the upload pipeline. store may be nil to skip raw
// payload archiving.
func NewService(index vectorindex.Index, embedder llm.Embedder, store storage.Store, recentWindow int, log zerolog.Logger) *Service {
	return &Service{
		index:        index,
		embedder:     embedder,
		store:        store,
		recentWindow: recentWindow,
		log:          log,
		locks:        make(map[string]*sync.Mutex),
	}
}

// Upload processes one expense payload for a user. Normalization errors
// abort before any chunk synthesis or persistence; embedding errors abort
// before the namespace replace, so a failed upload never leaves a partial
// chunk set behind.
func (s *Service) Upload(ctx context.Context, userID, name string, payload []byte) (*models.UploadResult, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()

	res, err := normalizer.Normalize(payload)
	if err != nil {
		return nil, err
	}

	chunks, err := chunker.Synthesize(res.Transactions, s.recentWindow)
	if err != nil {
		return nil, err
	}

	for i := range chunks {
		vector, err := s.embedder.Embed(ctx, chunks[i].Text)
		if err != nil {
			return nil, &models.EmbeddingError{Err: err}
		}
		chunks[i].Embedding = vector
	}

	if err := s.index.ReplaceNamespace(ctx, userID, chunks); err != nil {
		return nil, fmt.Errorf("replacing namespace %s: %w", userID, err)
	}

	result := &models.UploadResult{
		UploadID:         uuid.New().String(),
		UserID:           userID,
		TransactionCount: len(res.Transactions),
		ChunkCount:       len(chunks),
		Warnings:         res.Warnings,
		UploadedAt:       time.Now(),
	}

	if s.store != nil {
		info, err := s.store.SaveBytes(userID, name, payload)
		if err != nil {
			// Archiving is best effort; the upload itself succeeded.
			s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to archive upload")
		} else {
			result.FileID = info.ID
		}
	}

	s.log.Info().
		Str("user_id", userID).
		Int("transactions", result.TransactionCount).
		Int("chunks", result.ChunkCount).
		Int("warnings", len(result.Warnings)).
		Dur("elapsed", time.Since(start)).
		Msg("upload ingested")

	return result, nil
}

func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}
