package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/joestump/kernel-prism/internal/auth"
	"github.com/joestump/kernel-prism/internal/build"
	"github.com/joestump/kernel-prism/internal/db"
	"github.com/joestump/kernel-prism/internal/handler"
	"github.com/joestump/kernel-prism/internal/imagegen"
	"github.com/joestump/kernel-prism/internal/session"
	"github.com/joestump/kernel-prism/internal/store"
)

const exportQueueSize = 256

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := a.cfg, a.logger
			logger.Info("starting kernel-prism",
				zap.String("version", build.Version),
				zap.String("commit", build.Commit),
				zap.String("driver", cfg.DB.Driver))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			sessionManager := session.NewManager(database, cfg.DB.Driver, cfg.SessionLifetime, !cfg.InsecureCookies)
			workspaces := session.NewWorkspaces(sessionManager)

			oidcProvider, err := auth.NewProvider(ctx, cfg)
			if err != nil {
				return err
			}
			var authHandlers *auth.Handlers
			if oidcProvider != nil {
				authHandlers = auth.NewHandlers(oidcProvider, sessionManager, logger, !cfg.InsecureCookies)
			}

			var renderer imagegen.Generator
			svc, err := imagegen.New(ctx, cfg.ImageGen, logger)
			switch {
			case errors.Is(err, imagegen.ErrDisabled):
				logger.Info("image generation disabled: no API key")
			case err != nil:
				return err
			default:
				renderer = svc
			}

			exportStore := store.NewExportStore(database)
			exportCh := make(chan store.ExportEvent, exportQueueSize)
			if n, err := exportStore.CountAll(ctx); err == nil {
				logger.Info("export history", zap.Int64("exports", n))
			}

			router := handler.NewRouter(handler.Deps{
				DB:                 database,
				Logger:             logger,
				SessionManager:     sessionManager,
				Workspaces:         workspaces,
				AuthHandlers:       authHandlers,
				ExportStore:        exportStore,
				ExportCh:           exportCh,
				Renderer:           renderer,
				ResetClearsSubject: cfg.ResetClearsSubject,
			})

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// The writer outlives the server so exports queued by in-flight
			// requests during shutdown are still written.
			writerCtx, stopWriter := context.WithCancel(context.Background())
			defer stopWriter()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				store.RunExportWriter(writerCtx, exportCh, exportStore, logger)
				return nil
			})
			g.Go(func() error {
				logger.Info("listening", zap.String("addr", cfg.HTTP.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				defer stopWriter()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				logger.Info("shutting down")
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
}
