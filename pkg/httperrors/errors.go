// Package httperrors переводит доменные ошибки в HTTP-ответы.
package httperrors

import (
	"errors"
	"net/http"

	"github.com/sir_venger/chunkxfer/internal/models"
)

// Status возвращает HTTP-код для ошибки.
func Status(err error) int {
	switch {
	case errors.Is(err, models.ErrCancelled):
		return http.StatusRequestTimeout
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrMetadataUnresolved):
		return http.StatusFailedDependency
	case errors.Is(err, models.ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrIncomplete), errors.Is(err, models.ErrAlreadyFinalized):
		return http.StatusConflict
	case errors.Is(err, models.ErrNoStorage):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func Write(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), Status(err))
}
