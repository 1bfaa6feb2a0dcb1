// Package transfer реализует клиентскую сторону чанкованной передачи файлов:
// разбиение на чанки, последовательную загрузку с финализацией и обратную сборку.
package transfer

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sir_venger/chunkxfer/internal/models"
)

type (
	// Transport — граница с сетью. Каждый вызов либо целиком успешен, либо целиком неуспешен;
	// ретраи, пулы соединений и т.п. остаются на стороне реализации.
	Transport interface {
		Send(ctx context.Context, chunk models.ChunkPayload) error
		Finalize(ctx context.Context, req models.FinalizeRequest) error
		Receive(ctx context.Context, transferID string, index int) ([]byte, error)
		GetMeta(ctx context.Context, transferID string) (models.FileMeta, error)
	}

	// IDGenerator выдаёт новый идентификатор передачи.
	IDGenerator func() string

	// ProgressFunc вызывается синхронно после каждого успешно переданного чанка.
	ProgressFunc func(models.Progress)
)

type Deps struct {
	Transport Transport
	NewID     IDGenerator
	Log       zerolog.Logger
}

// Coordinator управляет загрузками и скачиваниями поверх одного транспорта.
// Общего изменяемого состояния между вызовами нет, поэтому Coordinator можно
// использовать из нескольких горутин одновременно.
type Coordinator struct {
	Deps
}

// New конструирует координатор; без генератора используется uuid v4.
func New(deps Deps) *Coordinator {
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	return &Coordinator{Deps: deps}
}
