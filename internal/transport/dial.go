// Package transport выбирает реализацию транспорта по адресу хранилища.
package transport

import (
	"context"
	"strings"
	"sync"

	"github.com/sir_venger/chunkxfer/internal/models"
	"github.com/sir_venger/chunkxfer/internal/usecase/transfer"
	"github.com/sir_venger/chunkxfer/pkg/chunkclient"
	"github.com/sir_venger/chunkxfer/pkg/s3transport"
)

// Options — параметры всех поддерживаемых транспортов.
type Options struct {
	HTTP chunkclient.Config
	S3   s3transport.Options
}

// Dial создаёт транспорт для адреса http(s)://node или s3://bucket/prefix.
func Dial(ctx context.Context, target string, opts Options) (transfer.Transport, error) {
	target = strings.TrimSpace(target)
	switch {
	case s3transport.IsTarget(target):
		return s3transport.New(ctx, target, opts.S3)
	case strings.HasPrefix(target, "http://"), strings.HasPrefix(target, "https://"):
		return chunkclient.New(target, opts.HTTP), nil
	default:
		return nil, models.NewValidationError("target", target, "expected http(s):// or s3:// address")
	}
}

// Pool кэширует транспорты по адресу, чтобы переиспользовать соединения.
type Pool struct {
	opts Options
	dial func(ctx context.Context, target string, opts Options) (transfer.Transport, error)

	mu    sync.Mutex
	cache map[string]transfer.Transport
}

// NewPool создаёт пустой пул.
func NewPool(opts Options) *Pool {
	return &Pool{opts: opts, dial: Dial, cache: map[string]transfer.Transport{}}
}

// Dial возвращает транспорт из кэша или создаёт новый.
func (p *Pool) Dial(ctx context.Context, target string) (transfer.Transport, error) {
	target = strings.TrimSpace(target)

	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.cache[target]; ok {
		return t, nil
	}

	t, err := p.dial(ctx, target, p.opts)
	if err != nil {
		return nil, err
	}
	p.cache[target] = t
	return t, nil
}
