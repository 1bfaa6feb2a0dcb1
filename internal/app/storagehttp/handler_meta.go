package storagehttp

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sir_venger/chunkxfer/pkg/chunkproto"
)

// meta отдаёт метаданные передачи; незавершённая передача — это 409.
func (a *Server) meta(w http.ResponseWriter, r *http.Request) {
	transferID, err := transferParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fm, err := readMeta(filepath.Join(a.dataDir, transferID, metaFileName))
	if os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !fm.Finalized {
		http.Error(w, "transfer incomplete", http.StatusConflict)
		return
	}

	writeJSON(w, http.StatusOK, metaBody(fm))
}

func metaBody(fm *transferMeta) chunkproto.MetaBody {
	total := fm.TotalChunks
	return chunkproto.MetaBody{
		TransferID:  fm.TransferID,
		TotalChunks: &total,
		FileName:    fm.FileName,
		ContentType: fm.ContentType,
		Size:        fm.Size,
		Finalized:   fm.Finalized,
		CreatedAt:   fm.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
