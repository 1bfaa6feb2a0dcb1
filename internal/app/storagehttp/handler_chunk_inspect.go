package storagehttp

import (
	"net/http"
	"strconv"

	"github.com/sir_venger/chunkxfer/pkg/chunkproto"
)

// inspectChunk отвечает на HEAD-запросы метаданными по чанку.
func (a *Server) inspectChunk(w http.ResponseWriter, r *http.Request) {
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

	w.Header().Set(chunkproto.HeaderChunkSize, strconv.FormatInt(cm.Size, 10))
	w.Header().Set(chunkproto.HeaderChecksum, cm.Sha256)
	w.Header().Set(chunkproto.HeaderTotalChunks, strconv.Itoa(meta.TotalChunks))
	w.WriteHeader(http.StatusOK)
}
