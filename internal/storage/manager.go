// Package storage archives raw uploaded expense files so an ingest can be
// inspected or replayed after the fact. Chunk data lives in the vector
// index; this store only keeps the original payloads.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/expense-assistant/backend/internal/models"
)

// Store is the interface for raw upload archiving.
type Store interface {
	SaveBytes(userID, name string, data []byte) (*models.FileInfo, error)
	Get(userID, id string) (*models.FileInfo, error)
	List(userID string, limit int) ([]*models.FileInfo, error)
	GetFilePath(userID, id string) (string, error)
}

// LocalStore implements Store on the local filesystem, one subdirectory
// per user.
type LocalStore struct {
	mu        sync.RWMutex
	uploadDir string
	files     map[string]map[string]*models.FileInfo // userID -> fileID -> info
}

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(uploadDir string) (*LocalStore, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &LocalStore{
		uploadDir: uploadDir,
		files:     make(map[string]map[string]*models.FileInfo),
	}, nil
}

// SaveBytes writes an uploaded payload under the user's directory.
func (s *LocalStore) SaveBytes(userID, name string, data []byte) (*models.FileInfo, error) {
	userDir := filepath.Join(s.uploadDir, userID)
	if err := os.MkdirAll(userDir, 0755); err != nil {
		return nil, fmt.Errorf("creating user directory: %w", err)
	}

	id := uuid.New().String()
	path := filepath.Join(userDir, id)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("writing file: %w", err)
	}

	info := &models.FileInfo{
		ID:         id,
		Name:       name,
		Size:       int64(len(data)),
		UploadedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files[userID] == nil {
		s.files[userID] = make(map[string]*models.FileInfo)
	}
	s.files[userID][id] = info

	return info, nil
}

// Get retrieves file metadata by user and id.
func (s *LocalStore) Get(userID, id string) (*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.files[userID][id]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", id)
	}
	return info, nil
}

// List returns a user's most recent uploads.
func (s *LocalStore) List(userID string, limit int) ([]*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*models.FileInfo
	for _, info := range s.files[userID] {
		list = append(list, info)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// GetFilePath returns the absolute path of a stored upload.
func (s *LocalStore) GetFilePath(userID, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.files[userID][id]; !ok {
		return "", fmt.Errorf("file not found: %s", id)
	}
	return filepath.Join(s.uploadDir, userID, id), nil
}
