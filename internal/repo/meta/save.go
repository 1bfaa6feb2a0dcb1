package meta

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/sir_venger/chunkxfer/internal/models"
)

// Save записывает (или обновляет) запись каталога.
func (s *PGStore) Save(ctx context.Context, file models.File) error {
	if strings.TrimSpace(file.ID) == "" {
		return models.NewValidationError("file_id", file.ID, "is empty")
	}

	sqlStr, args, err := upsertFileSQL(file)
	if err != nil {
		return err
	}

	if _, err := s.pool.Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("exec upsert: %w", err)
	}

	return nil
}

func upsertFileSQL(file models.File) (string, []any, error) {
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now().UTC()
	}

	sqlStr, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Insert(filesTable).
		Columns("id", "file_name", "content_type", "size", "total_chunks", "chunk_size", "storage", "created_at").
		Values(file.ID, file.Name, file.ContentType, file.Size, file.TotalChunks, file.ChunkSize, file.Storage, file.CreatedAt).
		Suffix(`
					ON CONFLICT (id) DO UPDATE
					SET file_name    = EXCLUDED.file_name,
						content_type = EXCLUDED.content_type,
						size         = EXCLUDED.size,
						total_chunks = EXCLUDED.total_chunks,
						chunk_size   = EXCLUDED.chunk_size,
						storage      = EXCLUDED.storage`).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build upsert sql: %w", err)
	}
	return sqlStr, args, nil
}
