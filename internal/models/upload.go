package models

import "math"

// UploadResult возвращается после успешной загрузки и содержит ключевые метаданные.
type UploadResult struct {
	TransferID  string
	Size        int64
	TotalChunks int
	ChunkSize   int64
}

// Chunk — непрерывный диапазон байт исходного файла.
type Chunk struct {
	Index  int
	Offset int64
	Length int64
}

// ChunkPlan описывает, на какие чанки разбит файл.
type ChunkPlan struct {
	FileSize  int64
	ChunkSize int64
	Chunks    []Chunk
}

// Count возвращает число чанков в плане.
func (p ChunkPlan) Count() int {
	return len(p.Chunks)
}

// ChunkPayload — один чанк вместе с адресом передачи.
// Data действителен только на время вызова Transport.Send.
type ChunkPayload struct {
	TransferID  string
	Index       int
	TotalChunks int
	Data        []byte
}

// FinalizeRequest сообщает бэкенду, что все чанки отправлены.
type FinalizeRequest struct {
	TransferID  string `json:"transfer_id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type,omitempty"`
	TotalChunks int    `json:"total_chunks"`
	Size        int64  `json:"size"`
}

// Progress — число полностью переданных чанков из общего количества.
type Progress struct {
	Completed int
	Total     int
}

// Percent округляет долю выполненного до целого процента.
func (p Progress) Percent() int {
	if p.Total <= 0 {
		return 100
	}
	return int(math.Round(float64(p.Completed) / float64(p.Total) * 100))
}
