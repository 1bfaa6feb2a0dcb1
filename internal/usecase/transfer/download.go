package transfer

import (
	"context"
	"fmt"
	"strings"

	"github.com/sir_venger/chunkxfer/internal/models"
)

// maxPreallocChunks ограничивает заранее резервируемую ёмкость под чанки.
const maxPreallocChunks = 1024

// DownloadRequest описывает одно скачивание. TotalChunks == nil означает, что число чанков
// неизвестно и его нужно получить через Transport.GetMeta.
type DownloadRequest struct {
	TransferID  string
	TotalChunks *int
	OnProgress  ProgressFunc
}

// Download забирает чанки строго по возрастанию индекса и склеивает их в один артефакт.
// При любой ошибке частичный результат не возвращается.
func (c *Coordinator) Download(ctx context.Context, req DownloadRequest) (models.Artifact, error) {
	transferID := strings.TrimSpace(req.TransferID)
	if transferID == "" {
		return models.Artifact{}, models.NewValidationError("transfer_id", req.TransferID, "is empty")
	}

	art := models.Artifact{TransferID: transferID}

	var total int
	if req.TotalChunks != nil {
		total = *req.TotalChunks
		if total < 0 {
			return models.Artifact{}, models.NewValidationError("total_chunks", total, "must be >= 0")
		}
	} else {
		meta, err := c.resolveMeta(ctx, transferID)
		if err != nil {
			return models.Artifact{}, err
		}
		total = meta.TotalChunks
		art.FileName = meta.FileName
		art.ContentType = meta.ContentType
	}

	log := c.Log.With().Str("transfer_id", transferID).Int("total_chunks", total).Logger()
	log.Debug().Msg("download started")

	// Место под чанк определяет только индекс цикла, порядок ответов транспорта
	// на результат не влияет. Число чанков приходит извне, поэтому срез растёт
	// по мере получения данных.
	parts := make([][]byte, 0, min(total, maxPreallocChunks))
	var size int
	for idx := 0; idx < total; idx++ {
		if err := checkCancelled(ctx); err != nil {
			return models.Artifact{}, err
		}

		data, err := c.Transport.Receive(ctx, transferID, idx)
		if err != nil {
			log.Debug().Err(err).Int("index", idx).Msg("chunk receive failed")
			return models.Artifact{}, classify(ctx, "receive", transferID, idx, err)
		}
		parts = append(parts, data)
		size += len(data)

		log.Debug().Int("index", idx).Int("length", len(data)).Msg("chunk received")
		if req.OnProgress != nil {
			req.OnProgress(models.Progress{Completed: idx + 1, Total: total})
		}
	}

	art.Data = make([]byte, 0, size)
	for idx := range parts {
		art.Data = append(art.Data, parts[idx]...)
	}

	log.Debug().Int("size", size).Msg("download assembled")
	return art, nil
}

// resolveMeta получает число чанков у бэкенда. Любая неудача здесь терминальна.
func (c *Coordinator) resolveMeta(ctx context.Context, transferID string) (models.FileMeta, error) {
	if err := checkCancelled(ctx); err != nil {
		return models.FileMeta{}, err
	}

	meta, err := c.Transport.GetMeta(ctx, transferID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.FileMeta{}, models.Cancelled(ctxErr)
		}
		return models.FileMeta{}, fmt.Errorf("%w: %s: %w", models.ErrMetadataUnresolved, transferID, err)
	}
	if meta.TotalChunks < 0 {
		return models.FileMeta{}, fmt.Errorf("%w: %s: no chunk count", models.ErrMetadataUnresolved, transferID)
	}

	return meta, nil
}
