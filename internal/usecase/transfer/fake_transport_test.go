package transfer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sir_venger/chunkxfer/internal/models"
)

// memTransport хранит чанки в памяти и проигрывает их без изменений.
type memTransport struct {
	mu        sync.Mutex
	chunks    map[string]map[int][]byte
	metas     map[string]models.FileMeta
	sent      []int
	finalized []models.FinalizeRequest
	received  []int

	failSendAt  int
	failReceive int
	sendErr     error
	metaErr     error
	onSend      func(idx int)
}

func newMemTransport() *memTransport {
	return &memTransport{
		chunks:      map[string]map[int][]byte{},
		metas:       map[string]models.FileMeta{},
		failSendAt:  -1,
		failReceive: -1,
	}
}

func (m *memTransport) Send(_ context.Context, chunk models.ChunkPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if chunk.Index == m.failSendAt {
		if m.sendErr != nil {
			return m.sendErr
		}
		return models.NewTransportError("send", chunk.TransferID, chunk.Index, 500, errors.New("boom"))
	}

	if m.chunks[chunk.TransferID] == nil {
		m.chunks[chunk.TransferID] = map[int][]byte{}
	}
	// Payload живёт только на время вызова, поэтому копируем.
	m.chunks[chunk.TransferID][chunk.Index] = append([]byte(nil), chunk.Data...)
	m.sent = append(m.sent, chunk.Index)
	if m.onSend != nil {
		m.onSend(chunk.Index)
	}
	return nil
}

func (m *memTransport) Finalize(_ context.Context, req models.FinalizeRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.finalized = append(m.finalized, req)
	m.metas[req.TransferID] = models.FileMeta{
		TransferID:  req.TransferID,
		TotalChunks: req.TotalChunks,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
		Finalized:   true,
	}
	return nil
}

func (m *memTransport) Receive(_ context.Context, transferID string, index int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.received = append(m.received, index)
	if index == m.failReceive {
		return nil, errors.New("connection reset")
	}
	data, ok := m.chunks[transferID][index]
	if !ok {
		return nil, models.NewTransportError("receive", transferID, index, 404, fmt.Errorf("%w", models.ErrNotFound))
	}
	return append([]byte(nil), data...), nil
}

func (m *memTransport) GetMeta(_ context.Context, transferID string) (models.FileMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.metaErr != nil {
		return models.FileMeta{}, m.metaErr
	}
	meta, ok := m.metas[transferID]
	if !ok {
		return models.FileMeta{}, models.NewTransportError("meta", transferID, -1, 404, models.ErrNotFound)
	}
	return meta, nil
}

func seqIDs(ids ...string) IDGenerator {
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}
