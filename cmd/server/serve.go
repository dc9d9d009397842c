package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront-backend/internal/config"
	"storefront-backend/internal/logging"
	"storefront-backend/internal/routes"
)

func serveCmd() *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer logging.Sync(logger)

			if autoMigrate {
				if err := migrate(db); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				logger.Info("schema migrated")
			}

			if cfg.AppEnv == config.EnvDocker {
				gin.SetMode(gin.ReleaseMode)
			}

			r := gin.New()
			r.Use(gin.Recovery(), logging.GinMiddleware(logger))
			// CORS config
			r.Use(cors.New(cors.Config{
				AllowOrigins:     []string{cfg.FrontendURL},
				AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
				AllowHeaders:     []string{"Origin", "Content-Type"},
				ExposeHeaders:    []string{"Content-Length"},
				AllowCredentials: true,
				MaxAge:           12 * time.Hour,
			}))

			routes.RegisterRoutes(r, db, cfg, logger)

			srv := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			select {
			case err, ok := <-errCh:
				if ok {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			case sig := <-sigCh:
				logger.Info("received shutdown signal", zap.String("signal", sig.String()))
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("http server shutdown failed", zap.Error(err))
			}

			if sqlDB, err := db.DB(); err == nil {
				if err := sqlDB.Close(); err != nil {
					logger.Error("close database failed", zap.Error(err))
				}
			}

			logger.Info("shutdown complete")
			return nil
		},
	}

	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "run schema migration before serving")
	return cmd
}
