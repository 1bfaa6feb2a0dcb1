package resthttp

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sir_venger/chunkxfer/pkg/httperrors"
)

func (s *Server) getFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	file, art, err := s.FilesService.Download(r.Context(), id)
	if err != nil {
		s.log.Warn().Err(err).Str("file_id", id).Msg("download failed")
		httperrors.Write(w, err)
		return
	}

	contentType := art.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	name := art.FileName
	if name == "" {
		name = file.ID
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(art.Size(), 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Data)
}

func (s *Server) getFileMeta(w http.ResponseWriter, r *http.Request) {
	file, err := s.FilesService.Meta(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}
