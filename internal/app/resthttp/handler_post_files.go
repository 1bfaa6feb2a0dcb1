package resthttp

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/sir_venger/chunkxfer/internal/models"
	"github.com/sir_venger/chunkxfer/internal/usecase/filesvc"
	"github.com/sir_venger/chunkxfer/pkg/httperrors"
)

// postFilesResp — тело ответа с метаданными загруженного файла.
type postFilesResp struct {
	FileID      string `json:"file_id"`
	Size        int64  `json:"size"`
	TotalChunks int    `json:"total_chunks"`
	ChunkSize   int64  `json:"chunk_size"`
	Storage     string `json:"storage"`
}

// postFiles принимает тело файла целиком и делегирует передачу сервису файлов.
func (s *Server) postFiles(w http.ResponseWriter, r *http.Request) {
	chunkSize, err := chunkSizeParam(r)
	if err != nil {
		httperrors.Write(w, err)
		return
	}

	file, err := s.FilesService.Upload(r.Context(), filesvc.UploadRequest{
		Body:        r.Body,
		Size:        r.ContentLength,
		FileName:    extractFileName(r),
		ContentType: r.Header.Get("Content-Type"),
		ChunkSize:   chunkSize,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("upload failed")
		httperrors.Write(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, postFilesResp{
		FileID:      file.ID,
		Size:        file.Size,
		TotalChunks: file.TotalChunks,
		ChunkSize:   file.ChunkSize,
		Storage:     file.Storage,
	})
}

// chunkSizeParam читает ?chunk_size=; 0 — размер по умолчанию.
func chunkSizeParam(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("chunk_size"))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, models.NewValidationError("chunk_size", raw, "must be a positive integer")
	}
	return n, nil
}

// extractFileName пытается вытащить имя файла из заголовков или query-параметра.
func extractFileName(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("X-File-Name")); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.Header.Get("X-Filename")); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.URL.Query().Get("filename")); v != "" {
		return v
	}
	return ""
}
