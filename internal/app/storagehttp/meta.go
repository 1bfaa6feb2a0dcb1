package storagehttp

import (
	"encoding/json"
	"os"
	"time"
)

// chunkMeta описывает один чанк, сохранённый storage-сервером.
type chunkMeta struct {
	Index  int    `json:"index"`
	Size   int64  `json:"size"`
	Sha256 string `json:"sha256"`
}

// transferMeta хранится на диске и агрегирует информацию обо всей передаче.
type transferMeta struct {
	TransferID  string            `json:"transfer_id"`
	TotalChunks int               `json:"total_chunks"`
	Chunks      map[int]chunkMeta `json:"chunks"`
	FileName    string            `json:"file_name,omitempty"`
	ContentType string            `json:"content_type,omitempty"`
	Size        int64             `json:"size"`
	Finalized   bool              `json:"finalized"`
	CreatedAt   time.Time         `json:"created_at"`
	FinalizedAt time.Time         `json:"finalized_at,omitempty"`
}

// missing возвращает индексы из [0, TotalChunks), для которых чанк ещё не записан.
func (m *transferMeta) missing() []int {
	var out []int
	for idx := 0; idx < m.TotalChunks; idx++ {
		if _, ok := m.Chunks[idx]; !ok {
			out = append(out, idx)
		}
	}
	return out
}

// storedSize суммирует размеры записанных чанков.
func (m *transferMeta) storedSize() int64 {
	var total int64
	for _, c := range m.Chunks {
		total += c.Size
	}
	return total
}

// writeMeta атомарно перезаписывает meta.json через временный файл.
func writeMeta(path string, fm *transferMeta) error {
	b, err := json.MarshalIndent(fm, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err = os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// readMeta читает метаданные передачи с диска.
func readMeta(path string) (*transferMeta, error) {
	// Храним JSON в удобочитаемом виде — ReadFile достаточно, т.к. размер meta.json мал.
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fm transferMeta
	if err := json.Unmarshal(b, &fm); err != nil {
		return nil, err
	}
	if fm.Chunks == nil {
		fm.Chunks = map[int]chunkMeta{}
	}

	return &fm, nil
}
