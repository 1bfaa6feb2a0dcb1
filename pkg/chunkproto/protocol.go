// Package chunkproto описывает HTTP-протокол обмена чанками между клиентами и storage-узлами.
package chunkproto

import (
	"fmt"
	"strings"
	"time"
)

// Параметры REST-протокола взаимодействия со стораджами.
const (
	ChunkPathFormat    = "%s/chunks/%s/%d"
	FinalizePathFormat = "%s/transfers/%s/finalize"
	MetaPathFormat     = "%s/transfers/%s/meta"
	HealthPath         = "/health"

	HeaderChecksum    = "X-Checksum-Sha256"
	HeaderTotalChunks = "X-Total-Chunks"
	HeaderChunkSize   = "X-Size"
)

// ChunkURL собирает адрес чанка на узле base.
func ChunkURL(base, transferID string, idx int) string {
	return fmt.Sprintf(ChunkPathFormat, trimBase(base), transferID, idx)
}

// FinalizeURL собирает адрес финализации передачи.
func FinalizeURL(base, transferID string) string {
	return fmt.Sprintf(FinalizePathFormat, trimBase(base), transferID)
}

// MetaURL собирает адрес метаданных передачи.
func MetaURL(base, transferID string) string {
	return fmt.Sprintf(MetaPathFormat, trimBase(base), transferID)
}

// HealthURL собирает адрес health-эндпоинта.
func HealthURL(base string) string {
	return trimBase(base) + HealthPath
}

func trimBase(base string) string {
	return strings.TrimRight(base, "/")
}

// FinalizeBody — JSON-тело запроса финализации.
type FinalizeBody struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type,omitempty"`
	TotalChunks int    `json:"total_chunks"`
	Size        int64  `json:"size"`
}

// MetaBody — JSON-ответ с метаданными. TotalChunks — указатель, чтобы отличать
// отсутствующее поле от пустого файла.
type MetaBody struct {
	TransferID  string    `json:"transfer_id"`
	TotalChunks *int      `json:"total_chunks"`
	FileName    string    `json:"file_name,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size"`
	Finalized   bool      `json:"finalized"`
	CreatedAt   time.Time `json:"created_at"`
}
