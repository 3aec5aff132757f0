// Package main runs the bank API server.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/securebank/bank-api/cmd/httpserver"
	"github.com/securebank/bank-api/internal/middleware"
	"github.com/securebank/bank-api/pkg/configpkg"
	"github.com/securebank/bank-api/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	server.Pool.Start()

	srv := &http.Server{
		Addr:    config.ServerAddress,
		Handler: server,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("address", config.ServerAddress).Msg("BANK API SERVER HAS STARTED")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("cannot start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}

	// Drain submitted transactions before closing the database.
	server.Pool.Stop()

	if err := db.Close(); err != nil {
		logger.Error().Err(err).Msg("closing database")
	}

	logger.Info().Msg("server stopped")
}
