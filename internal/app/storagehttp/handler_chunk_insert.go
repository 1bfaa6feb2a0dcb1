package storagehttp

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/sir_venger/chunkxfer/pkg/chunkproto"
)

// insertChunk принимает PUT-запросы на запись чанка.
func (a *Server) insertChunk(w http.ResponseWriter, r *http.Request) {
	req, ok := a.requireChunkRequest(w, r)
	if !ok {
		return
	}
	a.writeChunk(w, r, req)
}

func (a *Server) writeChunk(w http.ResponseWriter, r *http.Request, req *chunkRequest) {
	total, err := strconv.Atoi(r.Header.Get(chunkproto.HeaderTotalChunks))
	if err != nil || total <= 0 {
		http.Error(w, "invalid total chunks header", http.StatusBadRequest)
		return
	}
	if req.idx >= total {
		http.Error(w, "chunk index out of range", http.StatusBadRequest)
		return
	}

	// -1, если клиент не прислал Content-Length.
	size := r.ContentLength

	if err = os.MkdirAll(req.dir, 0o755); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Пишем во временный файл: на место чанк попадает только после всех проверок.
	tmp, err := os.CreateTemp(req.dir, "upload-*.tmp")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer os.Remove(tmp.Name())

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), r.Body)
	closeErr := tmp.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if closeErr != nil {
		http.Error(w, closeErr.Error(), http.StatusInternalServerError)
		return
	}
	if size >= 0 && n != size {
		http.Error(w, "size mismatch", http.StatusBadRequest)
		return
	}
	if n == 0 {
		http.Error(w, "empty chunk", http.StatusBadRequest)
		return
	}

	got := hex.EncodeToString(h.Sum(nil))
	if expSha := r.Header.Get(chunkproto.HeaderChecksum); expSha != "" && got != expSha {
		http.Error(w, "sha256 mismatch", http.StatusConflict)
		return
	}

	status, err := a.commitChunk(req, tmp.Name(), chunkMeta{Index: req.idx, Size: n, Sha256: got}, total)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	a.log.Debug().Str("transfer_id", req.transferID).Int("index", req.idx).Int64("size", n).Msg("chunk stored")
	w.WriteHeader(http.StatusCreated)
}

// commitChunk переносит временный файл на место чанка и обновляет meta.json.
// Повторная запись того же индекса заменяет чанк, пока передача не финализирована.
func (a *Server) commitChunk(req *chunkRequest, tmpPath string, cm chunkMeta, total int) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	fm, err := readMeta(req.meta)
	switch {
	case os.IsNotExist(err):
		fm = &transferMeta{
			TransferID:  req.transferID,
			TotalChunks: total,
			Chunks:      map[int]chunkMeta{},
			CreatedAt:   time.Now().UTC(),
		}
	case err != nil:
		return http.StatusInternalServerError, err
	}

	if fm.Finalized {
		return http.StatusConflict, fmt.Errorf("transfer %s already finalized", req.transferID)
	}
	if fm.TotalChunks != total {
		return http.StatusConflict, fmt.Errorf("total chunks mismatch: transfer has %d, got %d", fm.TotalChunks, total)
	}

	if err = os.Rename(tmpPath, req.chunk); err != nil {
		return http.StatusInternalServerError, err
	}

	fm.Chunks[req.idx] = cm
	if err = writeMeta(req.meta, fm); err != nil {
		return http.StatusInternalServerError, err
	}

	return http.StatusCreated, nil
}
