package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bowling/apps/go-server/internal/config"
	"github.com/robalobadob/bowling/apps/go-server/internal/httpserver"
	"github.com/robalobadob/bowling/apps/go-server/internal/store"
	"github.com/robalobadob/bowling/apps/go-server/internal/tracker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("storage", cfg.Storage).Msg("failed to open storage")
	}
	defer closeStore()

	srv := httpserver.New(tracker.New(st), cfg)
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Router(),
	}

	// signal.Notify requires the channel to be buffered
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-stop
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
			_ = server.Close()
		}
	}()

	log.Info().Str("port", cfg.Port).Str("storage", cfg.Storage).Msg("starting go-server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server exited")
		return
	}
	<-drained
	log.Info().Msg("server closed")
}

// openStore returns the configured Store and a function releasing it.
func openStore(cfg config.Config) (store.Store, func(), error) {
	if cfg.Storage == config.StorageMemory {
		return store.NewMemoryStore(), func() {}, nil
	}
	db, err := store.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("path", cfg.DatabasePath).Msg("sqlite opened")
	return db, func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("close sqlite")
		}
	}, nil
}
