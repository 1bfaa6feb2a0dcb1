package storagehttp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sir_venger/chunkxfer/pkg/chunkproto"
)

// finalize закрывает передачу: все чанки [0, total) должны быть на месте, а их сумма — равна size.
func (a *Server) finalize(w http.ResponseWriter, r *http.Request) {
	transferID, err := transferParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var body chunkproto.FinalizeBody
	if err = json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid finalize body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.TotalChunks < 0 || body.Size < 0 {
		http.Error(w, "total_chunks and size must be >= 0", http.StatusBadRequest)
		return
	}

	fm, status, err := a.finalizeTransfer(transferID, body)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	a.log.Info().
		Str("transfer_id", transferID).
		Str("file_name", fm.FileName).
		Int("total_chunks", fm.TotalChunks).
		Int64("size", fm.Size).
		Msg("transfer finalized")

	writeJSON(w, http.StatusOK, metaBody(fm))
}

func (a *Server) finalizeTransfer(transferID string, body chunkproto.FinalizeBody) (*transferMeta, int, error) {
	dir := filepath.Join(a.dataDir, transferID)
	metaPath := filepath.Join(dir, metaFileName)

	a.mu.Lock()
	defer a.mu.Unlock()

	fm, err := readMeta(metaPath)
	switch {
	case os.IsNotExist(err) && body.TotalChunks == 0:
		// Пустой файл: чанков не было, но запись о нём всё равно нужна.
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return nil, http.StatusInternalServerError, err
		}
		fm = &transferMeta{
			TransferID: transferID,
			Chunks:     map[int]chunkMeta{},
			CreatedAt:  time.Now().UTC(),
		}
	case os.IsNotExist(err):
		return nil, http.StatusNotFound, fmt.Errorf("transfer %s not found", transferID)
	case err != nil:
		return nil, http.StatusInternalServerError, err
	}

	if fm.Finalized {
		if fm.TotalChunks == body.TotalChunks && fm.Size == body.Size {
			return fm, http.StatusOK, nil
		}
		return nil, http.StatusConflict, fmt.Errorf("transfer %s already finalized", transferID)
	}

	if fm.TotalChunks != body.TotalChunks {
		return nil, http.StatusConflict, fmt.Errorf("total chunks mismatch: stored %d, requested %d", fm.TotalChunks, body.TotalChunks)
	}
	if missing := fm.missing(); len(missing) > 0 {
		return nil, http.StatusConflict, fmt.Errorf("transfer incomplete: missing chunks %s", joinInts(missing, 10))
	}
	if stored := fm.storedSize(); stored != body.Size {
		return nil, http.StatusConflict, fmt.Errorf("size mismatch: stored %d, requested %d", stored, body.Size)
	}

	fm.FileName = strings.TrimSpace(body.FileName)
	fm.ContentType = body.ContentType
	fm.Size = body.Size
	fm.Finalized = true
	fm.FinalizedAt = time.Now().UTC()

	if err = writeMeta(metaPath, fm); err != nil {
		return nil, http.StatusInternalServerError, err
	}

	return fm, http.StatusOK, nil
}

// joinInts печатает не больше limit чисел, чтобы сообщение об ошибке оставалось коротким.
func joinInts(v []int, limit int) string {
	parts := make([]string, 0, min(len(v), limit)+1)
	for i, n := range v {
		if i == limit {
			parts = append(parts, fmt.Sprintf("... (%d total)", len(v)))
			break
		}
		parts = append(parts, fmt.Sprint(n))
	}
	return strings.Join(parts, ",")
}
