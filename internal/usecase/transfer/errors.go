package transfer

import (
	"context"
	"errors"

	"github.com/sir_venger/chunkxfer/internal/models"
)

// checkCancelled возвращает ошибку отмены, если контекст уже завершён.
func checkCancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return models.Cancelled(err)
	}
	return nil
}

// classify приводит ошибку транспорта к таксономии пакета. Отмена вызывающим
// всегда побеждает: её нельзя путать со сбоем сети.
func classify(ctx context.Context, op, transferID string, index int, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return models.Cancelled(ctxErr)
	}
	if errors.Is(err, models.ErrCancelled) || errors.Is(err, models.ErrTransport) {
		return err
	}
	return models.NewTransportError(op, transferID, index, 0, err)
}
