package storagehttp

import (
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"
)

// healthStats — payload ответа /health.
type healthStats struct {
	OK         bool  `json:"ok"`
	FreeBytes  int64 `json:"free_bytes"`
	TotalBytes int64 `json:"total_bytes"`
	Transfers  int   `json:"transfers"`
}

// health возвращает агрегированную статистику по данным стоража.
func (a *Server) health(w http.ResponseWriter, r *http.Request) {
	var stats healthStats
	// Проходим по всем файлам в dataDir и суммируем их размер для простого capacity-метрика.
	err := filepath.WalkDir(a.dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != a.dataDir && filepath.Dir(path) == filepath.Clean(a.dataDir) {
				stats.Transfers++
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		stats.TotalBytes += info.Size()

		return nil
	})

	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// У стораджа нет сложных метрик, поэтому отдаём только total и флаг OK.
	stats.OK = true
	writeJSON(w, http.StatusOK, stats)
}
