package meta

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/sir_venger/chunkxfer/internal/models"
)

// Get возвращает запись каталога по идентификатору.
func (s *PGStore) Get(ctx context.Context, id string) (models.File, error) {
	if strings.TrimSpace(id) == "" {
		return models.File{}, models.NewValidationError("file_id", id, "is empty")
	}

	sqlStr, args, err := selectFileSQL(id)
	if err != nil {
		return models.File{}, err
	}

	f := models.File{ID: id}
	err = s.pool.QueryRow(ctx, sqlStr, args...).Scan(
		&f.Name, &f.ContentType, &f.Size, &f.TotalChunks, &f.ChunkSize, &f.Storage, &f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.File{}, models.ErrNotFound
		}
		return models.File{}, fmt.Errorf("scan file row: %w", err)
	}

	return f, nil
}

func selectFileSQL(id string) (string, []any, error) {
	sqlStr, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(
			"file_name",
			"COALESCE(content_type, '')",
			"size",
			"total_chunks",
			"chunk_size",
			"storage",
			"created_at",
		).
		From(filesTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build select: %w", err)
	}
	return sqlStr, args, nil
}
