/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the scheduling engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from environment (.env supported)
  2. Initialize SQLite override store
  3. Build the backend client and domain services
  4. Pull the initial planning view from the server
  5. Start the background refresher and HTTP server

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Stop the background refresher
  3. Wait for active requests to complete (30s timeout)
  4. Close the database connection
  5. Exit

ENVIRONMENT:
  PORT              HTTP server port (default: 8080)
  BACKEND_URL       Base URL of the authoritative server (required)
  DATABASE_PATH     SQLite override database (default: overrides.db)
  OVERRIDE_TTL      Review-decision override lifetime (default: 30m)
  REFRESH_INTERVAL  Background resync interval (default: 30s)
  LOG_LEVEL         zerolog level (default: info)

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Override persistence
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Yamine-coder/gestion-rh-sub000/anomaly"
	"github.com/Yamine-coder/gestion-rh-sub000/api"
	"github.com/Yamine-coder/gestion-rh-sub000/backend"
	"github.com/Yamine-coder/gestion-rh-sub000/config"
	"github.com/Yamine-coder/gestion-rh-sub000/planner"
	"github.com/Yamine-coder/gestion-rh-sub000/reconcile"
	"github.com/Yamine-coder/gestion-rh-sub000/schedule"
	"github.com/Yamine-coder/gestion-rh-sub000/store/sqlite"
	"github.com/Yamine-coder/gestion-rh-sub000/variance"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	// Override persistence
	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize database")
	}
	defer store.Close()

	// Domain services
	client, err := backend.NewHTTPClient(cfg.BackendURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("backend client")
	}

	board := schedule.NewBoard()
	plannerSvc := planner.New(client, board, log)

	cache, err := reconcile.NewCache(context.Background(), store, cfg.OverrideTTL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("override cache")
	}
	anomalySvc := anomaly.New(client, board, variance.NewClassifier(variance.DefaultThresholds()), cache, log)

	// Initial view; a down server is not fatal, the refresher retries.
	if err := plannerSvc.Refresh(context.Background()); err != nil {
		log.Warn().Err(err).Msg("initial refresh failed, starting with an empty view")
	}

	refresher := api.NewRefresher(plannerSvc, cfg.RefreshInterval, log)
	if err := refresher.Start(); err != nil {
		log.Fatal().Err(err).Msg("background refresher")
	}

	router := api.NewRouter(api.NewHandler(plannerSvc, anomalySvc))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	refresher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
