package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"buckler-tracker/internal/config"
	"buckler-tracker/internal/constants"
	fxmodules "buckler-tracker/internal/fx"
	"buckler-tracker/internal/middleware"
	"buckler-tracker/internal/scheduler"
	"buckler-tracker/internal/server"
	"buckler-tracker/internal/worker"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	trackerServer *server.TrackerServer,
	queue *worker.Queue,
	sched *scheduler.Scheduler,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	handler := middleware.RequestID(logger)(c.Handler(trackerServer.Routes()))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           handler,
		ReadHeaderTimeout: constants.RequestTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := sched.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
			}
			sched.Stop(shutdownCtx)
			if err := queue.Stop(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("worker stop failed")
			}
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
