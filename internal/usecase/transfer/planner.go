package transfer

import (
	"github.com/sir_venger/chunkxfer/internal/models"
)

// DefaultChunkSize совпадает с размером чанка по умолчанию у бэкенда (1 MiB).
const DefaultChunkSize int64 = 1 << 20

// Plan делит [0, fileSize) на чанки по chunkSize байт; последний может быть короче.
// Пустой файл даёт план без чанков.
func Plan(fileSize, chunkSize int64) (models.ChunkPlan, error) {
	if chunkSize <= 0 {
		return models.ChunkPlan{}, models.NewValidationError("chunk_size", chunkSize, "must be > 0")
	}
	if fileSize < 0 {
		return models.ChunkPlan{}, models.NewValidationError("file_size", fileSize, "must be >= 0")
	}

	count := int((fileSize + chunkSize - 1) / chunkSize)
	plan := models.ChunkPlan{
		FileSize:  fileSize,
		ChunkSize: chunkSize,
		Chunks:    make([]models.Chunk, count),
	}

	for idx := 0; idx < count; idx++ {
		offset := int64(idx) * chunkSize
		plan.Chunks[idx] = models.Chunk{
			Index:  idx,
			Offset: offset,
			Length: min(chunkSize, fileSize-offset),
		}
	}

	return plan, nil
}
