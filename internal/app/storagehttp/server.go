package storagehttp

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/sir_venger/chunkxfer/internal/logging"
)

const (
	metaFileName        = "meta.json"
	chunkFilenameFormat = "chunk_%06d.bin"
)

// Server обслуживает HTTP API узла хранения поверх локального диска.
type Server struct {
	dataDir string
	// mu сериализует read-modify-write над meta.json и переходы в finalized.
	mu  sync.Mutex
	log zerolog.Logger
}

// NewServer создаёт узел хранения поверх каталога с данными.
func NewServer(dataDir string) *Server {
	return &Server{
		dataDir: dataDir,
		log:     logging.Get("storage"),
	}
}

// New создаёт HTTP-обработчик стоража поверх каталога с данными.
func New(dataDir string) http.Handler {
	return NewServer(dataDir).Handler()
}

// Handler возвращает HTTP-обработчик узла.
func (a *Server) Handler() http.Handler {
	return a.routes()
}

// routes регистрирует обработчики для чанков, финализации, здоровья и GC.
func (a *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/chunks/{transferID}/{idx}", func(cr chi.Router) {
		cr.Put("/", a.insertChunk)
		cr.Get("/", a.fetchChunk)
		cr.Head("/", a.inspectChunk)
	})
	r.Route("/transfers/{transferID}", func(tr chi.Router) {
		tr.Post("/finalize", a.finalize)
		tr.Get("/meta", a.meta)
	})

	r.Get("/health", a.health)
	r.HandleFunc("/admin/gc", a.gcOnce)

	return r
}
