// Package filesvc — сервис документов шлюза: принимает файл целиком, прогоняет его
// через чанкованную передачу на выбранное хранилище и ведёт каталог.
package filesvc

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/sir_venger/chunkxfer/internal/models"
	"github.com/sir_venger/chunkxfer/internal/usecase/transfer"
)

type (
	// MetaStorage хранилище каталога файлов
	MetaStorage interface {
		Get(ctx context.Context, id string) (models.File, error)
		Save(ctx context.Context, file models.File) error
	}

	// Dialer отдаёт транспорт для адреса хранилища.
	Dialer interface {
		Dial(ctx context.Context, target string) (transfer.Transport, error)
	}

	// Service объединяет операции по загрузке и выдаче файлов.
	Service interface {
		Upload(ctx context.Context, req UploadRequest) (models.File, error)
		Download(ctx context.Context, fileID string) (models.File, models.Artifact, error)
		Meta(ctx context.Context, fileID string) (models.File, error)
		AddStorages(storages ...string)
		Storages() []string
	}
)

type Deps struct {
	MetaStorage MetaStorage
	Router      *Router
	Dialer      Dialer
	ChunkSize   int64
	NewID       transfer.IDGenerator
	Log         zerolog.Logger
	// TempDir — каталог для буферизации входящих тел; пусто — системный.
	TempDir string
}

type Files struct {
	Deps
}

// New конструирует сервис с заданными зависимостями.
func New(deps Deps) *Files {
	if deps.ChunkSize <= 0 {
		deps.ChunkSize = transfer.DefaultChunkSize
	}
	return &Files{Deps: deps}
}

var _ Service = (*Files)(nil)

// UploadRequest — входящий файл. Size < 0 означает, что длина заранее неизвестна.
type UploadRequest struct {
	Body        io.Reader
	Size        int64
	FileName    string
	ContentType string
	ChunkSize   int64
}

// AddStorages добавляет новые стораджи в маршрутизатор без удаления существующих.
func (s *Files) AddStorages(storages ...string) {
	if s.Router == nil || len(storages) == 0 {
		return
	}
	s.Router.Add(storages...)
}

// Storages возвращает текущий список стораджей.
func (s *Files) Storages() []string {
	if s.Router == nil {
		return nil
	}
	return s.Router.Snapshot()
}

// Meta возвращает запись каталога.
func (s *Files) Meta(ctx context.Context, fileID string) (models.File, error) {
	return s.MetaStorage.Get(ctx, fileID)
}

func (s *Files) coordinator(tr transfer.Transport) *transfer.Coordinator {
	return transfer.New(transfer.Deps{Transport: tr, NewID: s.NewID, Log: s.Log})
}
