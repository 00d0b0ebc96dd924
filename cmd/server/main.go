package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ra-autohaus/tracker/internal/config"
	httpapi "github.com/ra-autohaus/tracker/internal/http"
	"github.com/ra-autohaus/tracker/internal/service"
	"github.com/ra-autohaus/tracker/internal/vocab"
	"github.com/ra-autohaus/tracker/internal/warehouse"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "ra-tracker").Logger()

	ctx := context.Background()

	var store warehouse.Warehouse
	if cfg.DatabaseURL == "" {
		store = warehouse.NewMemory()
		logger.Info().Msg("using in-memory warehouse")
	} else {
		pg, err := warehouse.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect warehouse")
		}
		store = pg
	}
	defer store.Close()

	engine := service.NewEngine(store, vocab.NewDefault(), logger)
	router := httpapi.Router(cfg, store, engine, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
