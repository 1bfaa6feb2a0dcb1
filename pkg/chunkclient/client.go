// Package chunkclient — HTTP-транспорт чанкованной передачи поверх storage-узла.
package chunkclient

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sir_venger/chunkxfer/internal/models"
	"github.com/sir_venger/chunkxfer/pkg/chunkproto"
)

const (
	defaultTimeout = 60 * time.Second
	userAgent      = "chunkxfer"
	maxErrorBody   = 512
)

// Config задаёт параметры HTTP-клиента.
type Config struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// Client реализует транспорт для одного storage-узла. Безопасен для
// параллельных независимых передач: общий у них только *http.Client.
type Client struct {
	base string
	c    *http.Client
	cfg  Config
}

// New создаёт клиент для узла base, например http://storage-1:8081.
func New(base string, cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = userAgent
	}

	return &Client{
		base: strings.TrimRight(base, "/"),
		c: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		cfg: cfg,
	}
}

// Base возвращает адрес узла.
func (h *Client) Base() string {
	return h.base
}

// Send кладёт один чанк в хранилище.
func (h *Client) Send(ctx context.Context, chunk models.ChunkPayload) error {
	u := chunkproto.ChunkURL(h.base, chunk.TransferID, chunk.Index)
	sum := sha256.Sum256(chunk.Data)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(chunk.Data))
	if err != nil {
		return models.NewTransportError("send", chunk.TransferID, chunk.Index, 0, err)
	}
	req.ContentLength = int64(len(chunk.Data))
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set(chunkproto.HeaderChecksum, hex.EncodeToString(sum[:]))
	req.Header.Set(chunkproto.HeaderTotalChunks, strconv.Itoa(chunk.TotalChunks))

	resp, err := h.do(req)
	if err != nil {
		return models.NewTransportError("send", chunk.TransferID, chunk.Index, 0, err)
	}
	defer drain(resp)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return statusError("send", chunk.TransferID, chunk.Index, resp)
	}
	return nil
}

// Finalize сообщает узлу, что все чанки отправлены.
func (h *Client) Finalize(ctx context.Context, fin models.FinalizeRequest) error {
	body, err := json.Marshal(chunkproto.FinalizeBody{
		FileName:    fin.FileName,
		ContentType: fin.ContentType,
		TotalChunks: fin.TotalChunks,
		Size:        fin.Size,
	})
	if err != nil {
		return models.NewTransportError("finalize", fin.TransferID, -1, 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, chunkproto.FinalizeURL(h.base, fin.TransferID), bytes.NewReader(body))
	if err != nil {
		return models.NewTransportError("finalize", fin.TransferID, -1, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.do(req)
	if err != nil {
		return models.NewTransportError("finalize", fin.TransferID, -1, 0, err)
	}
	defer drain(resp)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return statusError("finalize", fin.TransferID, -1, resp)
	}
	return nil
}

// Receive скачивает один чанк и сверяет его контрольную сумму, если узел её прислал.
func (h *Client) Receive(ctx context.Context, transferID string, index int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, chunkproto.ChunkURL(h.base, transferID, index), nil)
	if err != nil {
		return nil, models.NewTransportError("receive", transferID, index, 0, err)
	}

	resp, err := h.do(req)
	if err != nil {
		return nil, models.NewTransportError("receive", transferID, index, 0, err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("receive", transferID, index, resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewTransportError("receive", transferID, index, resp.StatusCode, err)
	}

	if resp.ContentLength >= 0 && int64(len(data)) != resp.ContentLength {
		return nil, models.NewTransportError("receive", transferID, index, resp.StatusCode,
			fmt.Errorf("size mismatch: want %d, got %d", resp.ContentLength, len(data)))
	}
	if want := resp.Header.Get(chunkproto.HeaderChecksum); want != "" {
		sum := sha256.Sum256(data)
		if got := hex.EncodeToString(sum[:]); got != want {
			return nil, models.NewTransportError("receive", transferID, index, resp.StatusCode,
				fmt.Errorf("sha256 mismatch: want %s, got %s", want, got))
		}
	}

	return data, nil
}

// GetMeta запрашивает метаданные завершённой передачи. Отсутствующее total_chunks
// возвращается как -1.
func (h *Client) GetMeta(ctx context.Context, transferID string) (models.FileMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, chunkproto.MetaURL(h.base, transferID), nil)
	if err != nil {
		return models.FileMeta{}, models.NewTransportError("meta", transferID, -1, 0, err)
	}

	resp, err := h.do(req)
	if err != nil {
		return models.FileMeta{}, models.NewTransportError("meta", transferID, -1, 0, err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return models.FileMeta{}, statusError("meta", transferID, -1, resp)
	}

	var body chunkproto.MetaBody
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.FileMeta{}, models.NewTransportError("meta", transferID, -1, resp.StatusCode, err)
	}

	meta := models.FileMeta{
		TransferID:  transferID,
		TotalChunks: -1,
		FileName:    body.FileName,
		ContentType: body.ContentType,
		Size:        body.Size,
		Finalized:   body.Finalized,
		CreatedAt:   body.CreatedAt,
	}
	if body.TotalChunks != nil {
		meta.TotalChunks = *body.TotalChunks
	}
	return meta, nil
}

func (h *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", h.cfg.UserAgent)
	for k, v := range h.cfg.Headers {
		req.Header.Set(k, v)
	}
	return h.c.Do(req)
}

// statusError превращает неуспешный ответ в TransportError; 404 дополнительно
// совпадает с models.ErrNotFound.
func statusError(op, transferID string, index int, resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	text := strings.TrimSpace(string(msg))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}

	cause := errors.New(text)
	if resp.StatusCode == http.StatusNotFound {
		cause = fmt.Errorf("%w: %s", models.ErrNotFound, text)
	}

	return models.NewTransportError(op, transferID, index, resp.StatusCode, cause)
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
