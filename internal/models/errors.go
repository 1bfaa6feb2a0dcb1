package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("transfer not found")
	ErrIncomplete         = errors.New("transfer incomplete")
	ErrNoStorage          = errors.New("no storage ready")
	ErrInvalidInput       = errors.New("invalid input")
	ErrTransport          = errors.New("transport error")
	ErrMetadataUnresolved = errors.New("metadata unresolved")
	ErrCancelled          = errors.New("transfer cancelled")
	ErrAlreadyFinalized   = errors.New("transfer already finalized")
)

// ValidationError описывает некорректный аргумент, обнаруженный до любого сетевого вызова.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s=%v: %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError создаёт ошибку класса ErrInvalidInput.
func NewValidationError(field string, value any, message string) error {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// TransportError — любая ошибка, пришедшая с границы транспорта.
// Index равен -1 для операций, не относящихся к конкретному чанку.
type TransportError struct {
	Op         string
	TransferID string
	Index      int
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	var where string
	if e.Index >= 0 {
		where = fmt.Sprintf(" chunk %d", e.Index)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport %s %s%s: status %d: %v", e.Op, e.TransferID, where, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport %s %s%s: %v", e.Op, e.TransferID, where, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// NewTransportError оборачивает err в TransportError.
func NewTransportError(op, transferID string, index int, status int, err error) error {
	return &TransportError{Op: op, TransferID: transferID, Index: index, StatusCode: status, Err: err}
}

// Cancelled помечает ошибку контекста как пользовательскую отмену.
// Результат совпадает и с ErrCancelled, и с исходной ошибкой контекста.
func Cancelled(cause error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}
