// Package repo — каталог загруженных документов.
package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/sir_venger/chunkxfer/internal/models"
	"github.com/sir_venger/chunkxfer/internal/repo/meta"
)

// Store хранит записи каталога.
type Store interface {
	Get(ctx context.Context, id string) (models.File, error)
	Save(ctx context.Context, file models.File) error
	Close() error
}

// Open выбирает реализацию по схеме DSN:
// memory:// — в памяти, badger://<dir> — встроенная БД, postgres:// — Postgres.
func Open(ctx context.Context, dsn string) (Store, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "" || strings.HasPrefix(dsn, "memory://"):
		return NewMemoryStore(), nil
	case strings.HasPrefix(dsn, "badger://"):
		return OpenBadger(strings.TrimPrefix(dsn, "badger://"))
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return meta.NewPGStore(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported meta dsn %q", dsn)
	}
}

func validateFile(file models.File) error {
	if strings.TrimSpace(file.ID) == "" {
		return models.NewValidationError("file_id", file.ID, "is empty")
	}
	return nil
}
