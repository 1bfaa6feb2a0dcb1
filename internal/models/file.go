package models

import "time"

// File — запись каталога документов: где и как был загружен файл.
type File struct {
	ID          string    `json:"file_id"`
	Name        string    `json:"file_name,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size"`
	TotalChunks int       `json:"total_chunks"`
	ChunkSize   int64     `json:"chunk_size"`
	Storage     string    `json:"storage"`
	CreatedAt   time.Time `json:"created_at"`
}

// FileMeta — метаданные завершённой передачи, которые отдаёт бэкенд.
type FileMeta struct {
	TransferID  string    `json:"transfer_id"`
	TotalChunks int       `json:"total_chunks"`
	FileName    string    `json:"file_name,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size"`
	Finalized   bool      `json:"finalized"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Artifact — полностью собранный файл. Существует только в рамках одного скачивания.
type Artifact struct {
	TransferID  string
	FileName    string
	ContentType string
	Data        []byte
}

// Size возвращает длину собранного файла.
func (a Artifact) Size() int64 {
	return int64(len(a.Data))
}
