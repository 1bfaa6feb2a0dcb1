package filesvc

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sir_venger/chunkxfer/internal/models"
	"github.com/sir_venger/chunkxfer/internal/usecase/transfer"
)

// Upload буферизует тело во временный файл, выбирает сторадж и передаёт файл чанками.
// Запись в каталоге появляется только после успешной финализации.
func (s *Files) Upload(ctx context.Context, req UploadRequest) (models.File, error) {
	chunkSize := req.ChunkSize
	if chunkSize == 0 {
		chunkSize = s.ChunkSize
	}
	if chunkSize < 0 {
		return models.File{}, models.NewValidationError("chunk_size", chunkSize, "must be positive")
	}

	spool, size, err := s.spool(req.Body, req.Size)
	if err != nil {
		return models.File{}, err
	}
	defer func() {
		_ = spool.Close()
		_ = os.Remove(spool.Name())
	}()

	storages, err := s.Router.Allocate(ctx, 1)
	if err != nil {
		return models.File{}, err
	}
	storage := storages[0]

	tr, err := s.Dialer.Dial(ctx, storage)
	if err != nil {
		return models.File{}, err
	}

	res, err := s.coordinator(tr).Upload(ctx, transfer.UploadRequest{
		Source:      spool,
		Size:        size,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		ChunkSize:   chunkSize,
	})
	if err != nil {
		return models.File{}, err
	}

	file := models.File{
		ID:          res.TransferID,
		Name:        strings.TrimSpace(req.FileName),
		ContentType: req.ContentType,
		Size:        res.Size,
		TotalChunks: res.TotalChunks,
		ChunkSize:   res.ChunkSize,
		Storage:     storage,
		CreatedAt:   time.Now().UTC(),
	}
	if err = s.MetaStorage.Save(ctx, file); err != nil {
		return models.File{}, fmt.Errorf("save catalog record %s: %w", file.ID, err)
	}

	s.Log.Info().
		Str("file_id", file.ID).
		Str("storage", storage).
		Int64("size", file.Size).
		Int("chunks", file.TotalChunks).
		Msg("file stored")

	return file, nil
}

// spool копирует тело во временный файл и сверяет длину, если она была объявлена.
func (s *Files) spool(body io.Reader, declared int64) (*os.File, int64, error) {
	if body == nil {
		return nil, 0, models.NewValidationError("body", nil, "is nil")
	}

	f, err := os.CreateTemp(s.TempDir, "upload-*.spool")
	if err != nil {
		return nil, 0, fmt.Errorf("create spool: %w", err)
	}
	fail := func(err error) (*os.File, int64, error) {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, 0, err
	}

	n, err := io.Copy(f, body)
	if err != nil {
		return fail(fmt.Errorf("read body: %w", err))
	}
	if declared >= 0 && n != declared {
		return fail(models.NewValidationError("content_length", declared, fmt.Sprintf("body has %d bytes", n)))
	}

	return f, n, nil
}
