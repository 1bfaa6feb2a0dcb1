package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sir_venger/chunkxfer/internal/models"
)

// UploadRequest описывает один файл для загрузки.
type UploadRequest struct {
	Source      io.ReaderAt
	Size        int64
	FileName    string
	ContentType string
	ChunkSize   int64
	OnProgress  ProgressFunc
}

// Upload отправляет файл чанк за чанком и финализирует передачу.
// Первая же ошибка прерывает загрузку; уже отправленные чанки остаются на бэкенде.
func (c *Coordinator) Upload(ctx context.Context, req UploadRequest) (models.UploadResult, error) {
	if req.Source == nil && req.Size > 0 {
		return models.UploadResult{}, models.NewValidationError("source", nil, "is required")
	}

	transferID := c.NewID()
	plan, err := Plan(req.Size, req.ChunkSize)
	if err != nil {
		return models.UploadResult{}, err
	}
	total := plan.Count()

	log := c.Log.With().Str("transfer_id", transferID).Int("total_chunks", total).Logger()
	log.Debug().Int64("size", req.Size).Int64("chunk_size", req.ChunkSize).Msg("upload started")

	// Один буфер на всю загрузку: в памяти одновременно не больше одного чанка.
	var buf []byte
	if total > 0 {
		buf = make([]byte, plan.Chunks[0].Length)
	}

	for _, chunk := range plan.Chunks {
		if err = checkCancelled(ctx); err != nil {
			return models.UploadResult{}, err
		}

		data := buf[:chunk.Length]
		if err = readChunk(req.Source, chunk, data); err != nil {
			return models.UploadResult{}, err
		}

		payload := models.ChunkPayload{
			TransferID:  transferID,
			Index:       chunk.Index,
			TotalChunks: total,
			Data:        data,
		}
		if err = c.Transport.Send(ctx, payload); err != nil {
			log.Debug().Err(err).Int("index", chunk.Index).Msg("chunk send failed")
			return models.UploadResult{}, classify(ctx, "send", transferID, chunk.Index, err)
		}

		log.Debug().Int("index", chunk.Index).Int64("length", chunk.Length).Msg("chunk sent")
		if req.OnProgress != nil {
			req.OnProgress(models.Progress{Completed: chunk.Index + 1, Total: total})
		}
	}

	if err = checkCancelled(ctx); err != nil {
		return models.UploadResult{}, err
	}

	fin := models.FinalizeRequest{
		TransferID:  transferID,
		FileName:    strings.TrimSpace(req.FileName),
		ContentType: req.ContentType,
		TotalChunks: total,
		Size:        req.Size,
	}
	if err = c.Transport.Finalize(ctx, fin); err != nil {
		return models.UploadResult{}, classify(ctx, "finalize", transferID, -1, err)
	}

	log.Debug().Msg("upload finalized")
	return models.UploadResult{
		TransferID:  transferID,
		Size:        req.Size,
		TotalChunks: total,
		ChunkSize:   req.ChunkSize,
	}, nil
}

// readChunk читает ровно chunk.Length байт по смещению chunk.Offset.
func readChunk(src io.ReaderAt, chunk models.Chunk, dst []byte) error {
	n, err := src.ReadAt(dst, chunk.Offset)
	if int64(n) == chunk.Length {
		// io.ReaderAt может вернуть EOF вместе с последним полным куском.
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return models.NewValidationError("source", chunk.Offset,
			fmt.Sprintf("short read at chunk %d: got %d of %d bytes", chunk.Index, n, chunk.Length))
	}
	return fmt.Errorf("read chunk %d: %w", chunk.Index, err)
}
