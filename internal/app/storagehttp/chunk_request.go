package storagehttp

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// chunkRequest содержит все вычисленные пути до чанка и метаданных передачи.
type chunkRequest struct {
	transferID string
	idx        int
	dir        string
	chunk      string
	meta       string
}

// requireChunkRequest валидирует path-параметры и возвращает заполненную структуру.
func (a *Server) requireChunkRequest(w http.ResponseWriter, r *http.Request) (*chunkRequest, bool) {
	req, err := newChunkRequest(a.dataDir, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	return req, true
}

// newChunkRequest парсит идентификаторы из URL и рассчитывает пути на диске.
func newChunkRequest(root string, r *http.Request) (*chunkRequest, error) {
	transferID, err := transferParam(r)
	if err != nil {
		return nil, err
	}

	// Индекс чанка приходит в десятичном виде, отрицательные значения запрещены.
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		return nil, fmt.Errorf("invalid chunk index: %w", err)
	}
	if idx < 0 {
		return nil, fmt.Errorf("invalid chunk index: must be non-negative")
	}

	// Каждой передаче соответствует собственная директория в dataDir.
	dir := filepath.Join(root, transferID)

	return &chunkRequest{
		transferID: transferID,
		idx:        idx,
		dir:        dir,
		chunk:      filepath.Join(dir, fmt.Sprintf(chunkFilenameFormat, idx)),
		meta:       filepath.Join(dir, metaFileName),
	}, nil
}

// transferParam достаёт transferID и не даёт выйти за пределы dataDir.
func transferParam(r *http.Request) (string, error) {
	id := chi.URLParam(r, "transferID")
	if id == "" || id == "." || id == ".." {
		return "", fmt.Errorf("invalid transfer id")
	}
	if strings.ContainsFunc(id, func(c rune) bool {
		return !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_' || c == '.')
	}) {
		return "", fmt.Errorf("invalid transfer id %q", id)
	}
	return id, nil
}
