package resthttp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/sir_venger/chunkxfer/internal/config"
	"github.com/sir_venger/chunkxfer/internal/logging"
	"github.com/sir_venger/chunkxfer/internal/repo"
	"github.com/sir_venger/chunkxfer/internal/transport"
	"github.com/sir_venger/chunkxfer/internal/usecase/filesvc"
	adapters "github.com/sir_venger/chunkxfer/internal/usecase/filesvc/adapters/storage"
)

type Server struct {
	FilesService filesvc.Service
	Cfg          *config.Config
	log          zerolog.Logger
	closer       func() error
}

type addStoragesRequest struct {
	Storages []string `json:"storages"`
}

// NewServer собирает сервис документов по конфигурации и возвращает роутер.
func NewServer(ctx context.Context, cfg *config.Config) (http.Handler, *Server, error) {
	store, err := repo.Open(ctx, cfg.MetaDSN)
	if err != nil {
		return nil, nil, err
	}

	log := logging.Get("rest")
	router := filesvc.NewRouter(adapters.NewHealthAdapter(0))
	router.Set(cfg.Storages)

	files := filesvc.New(filesvc.Deps{
		MetaStorage: store,
		Router:      router,
		Dialer:      transport.NewPool(transport.Options{}),
		ChunkSize:   cfg.ChunkSize,
		Log:         log,
	})

	srv := &Server{
		FilesService: files,
		Cfg:          cfg,
		log:          log,
		closer:       store.Close,
	}
	return srv.Routes(), srv, nil
}

// Routes возвращает роутер поверх уже собранного сервиса.
func (s *Server) Routes() http.Handler {
	rtr := chi.NewRouter()
	rtr.Use(middleware.Recoverer)

	rtr.Post("/files", s.postFiles)
	rtr.Get("/files/{id}", s.getFile)
	rtr.Get("/files/{id}/meta", s.getFileMeta)
	rtr.Get("/admin/config", s.getConfig)
	rtr.Post("/admin/storages", s.addStorages)

	return rtr
}

// Close освобождает каталог.
func (s *Server) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

func (s *Server) getConfig(w http.ResponseWriter, _ *http.Request) {
	cfg := *s.Cfg
	cfg.Storages = s.FilesService.Storages()
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) addStorages(w http.ResponseWriter, r *http.Request) {
	var payload addStoragesRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(payload.Storages) == 0 {
		http.Error(w, "storages list is empty", http.StatusBadRequest)
		return
	}

	s.FilesService.AddStorages(payload.Storages...)
	s.log.Info().Strs("storages", payload.Storages).Msg("storages added")
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
