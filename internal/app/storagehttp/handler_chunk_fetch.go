package storagehttp

import (
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/sir_venger/chunkxfer/pkg/chunkproto"
)

// fetchChunk обслуживает GET-запросы, возвращая содержимое чанка.
func (a *Server) fetchChunk(w http.ResponseWriter, r *http.Request) {
	req, ok := a.requireChunkRequest(w, r)
	if !ok {
		return
	}

	meta, err := readMeta(req.meta)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	cm, ok := meta.Chunks[req.idx]
	if !ok {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(req.chunk)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	size := info.Size()
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set(chunkproto.HeaderChunkSize, strconv.FormatInt(size, 10))
	w.Header().Set(chunkproto.HeaderChecksum, cm.Sha256)
	w.Header().Set("Content-Type", "application/octet-stream")

	if _, err = io.Copy(w, f); err != nil {
		// Заголовки уже ушли, остаётся только залогировать обрыв.
		a.log.Warn().Err(err).Str("transfer_id", req.transferID).Int("index", req.idx).Msg("chunk stream interrupted")
	}
}
