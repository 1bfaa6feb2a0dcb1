package filesvc

import (
	"context"

	"github.com/sir_venger/chunkxfer/internal/models"
	"github.com/sir_venger/chunkxfer/internal/usecase/transfer"
)

// Download находит файл в каталоге и собирает его со стоража, на который он был записан.
func (s *Files) Download(ctx context.Context, fileID string) (models.File, models.Artifact, error) {
	file, err := s.MetaStorage.Get(ctx, fileID)
	if err != nil {
		return models.File{}, models.Artifact{}, err
	}

	tr, err := s.Dialer.Dial(ctx, file.Storage)
	if err != nil {
		return models.File{}, models.Artifact{}, err
	}

	total := file.TotalChunks
	art, err := s.coordinator(tr).Download(ctx, transfer.DownloadRequest{
		TransferID:  file.ID,
		TotalChunks: &total,
	})
	if err != nil {
		return models.File{}, models.Artifact{}, err
	}

	if art.FileName == "" {
		art.FileName = file.Name
	}
	if art.ContentType == "" {
		art.ContentType = file.ContentType
	}

	s.Log.Debug().Str("file_id", file.ID).Int64("size", art.Size()).Msg("file assembled")
	return file, art, nil
}
