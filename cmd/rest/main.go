package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/sir_venger/chunkxfer/internal/app/resthttp"
	"github.com/sir_venger/chunkxfer/internal/config"
	"github.com/sir_venger/chunkxfer/internal/logging"
)

// main инициализирует REST HTTP-шлюз и обеспечивает корректное завершение по сигналу.
func main() {
	_ = godotenv.Load()
	logging.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, srv, err := resthttp.NewServer(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build gateway")
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Warn().Err(err).Msg("close catalog")
		}
	}()

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Сценарий graceful shutdown при получении SIGTERM/SIGINT.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("REST shutdown error")
		}
	}()

	log.Info().
		Str("addr", cfg.ListenAddr).
		Strs("storages", cfg.Storages).
		Int64("chunk_size", cfg.ChunkSize).
		Msg("REST listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("REST server failed")
	}
}
