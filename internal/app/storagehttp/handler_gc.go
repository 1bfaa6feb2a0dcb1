package storagehttp

import (
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sir_venger/chunkxfer/internal/logging"
)

const manualGCTTL = 24 * time.Hour

// gcOnce вручную запускает сбор старых незавершённых передач.
func (a *Server) gcOnce(w http.ResponseWriter, _ *http.Request) {
	removed, err := a.sweep(manualGCTTL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// sweep удаляет устаревшие передачи под a.mu, общим с commitChunk и finalize.
func (a *Server) sweep(ttl time.Duration) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return sweepOnce(a.dataDir, ttl, a.log)
}

// StartGC стартует периодическую очистку каталога узла.
func (a *Server) StartGC(ttl time.Duration, every time.Duration) func() {
	if every <= 0 || ttl <= 0 {
		return func() {}
	}

	log := logging.Get("storage-gc")
	ticker := time.NewTicker(every)
	stop := make(chan struct{})
	var once sync.Once
	go func() {
		for {
			select {
			case <-ticker.C:
				if _, err := a.sweep(ttl); err != nil {
					log.Warn().Err(err).Msg("gc sweep failed")
				}
			case <-stop:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			close(stop)
		})
	}
}

// sweepOnce удаляет каталоги передач, которые так и не были финализированы и
// не обновлялись дольше ttl. Это осиротевшие чанки упавших загрузок.
func sweepOnce(root string, ttl time.Duration, log zerolog.Logger) (int, error) {
	now := time.Now()
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		tdir := filepath.Join(root, e.Name())
		metaPath := filepath.Join(tdir, metaFileName)
		fi, err := os.Stat(metaPath)
		if err != nil {
			continue
		}

		if now.Sub(fi.ModTime()) < ttl {
			continue
		}

		fm, err := readMeta(metaPath)
		if err != nil || fm.Finalized {
			continue
		}

		if err = os.RemoveAll(tdir); err != nil {
			log.Warn().Err(err).Str("transfer_id", e.Name()).Msg("gc remove failed")
			continue
		}
		removed++
		log.Info().Str("transfer_id", e.Name()).Int("chunks", len(fm.Chunks)).Int("total_chunks", fm.TotalChunks).Msg("stale transfer removed")
	}

	return removed, nil
}
