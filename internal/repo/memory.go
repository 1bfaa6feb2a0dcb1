package repo

import (
	"context"
	"sync"

	"github.com/sir_venger/chunkxfer/internal/models"
)

// MemoryStore хранит каталог только в оперативной памяти; удобно для тестов.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string]models.File
}

// NewMemoryStore создаёт пустое in-memory хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: map[string]models.File{}}
}

// Get возвращает запись по id или models.ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id string) (models.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[id]
	if !ok {
		return models.File{}, models.ErrNotFound
	}
	return f, nil
}

// Save записывает (или обновляет) запись целиком.
func (s *MemoryStore) Save(_ context.Context, file models.File) error {
	if err := validateFile(file); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[file.ID] = file
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
