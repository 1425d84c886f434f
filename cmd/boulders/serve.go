package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aliskhannn/boulder-progress/internal/delivery/rest"
	"github.com/aliskhannn/boulder-progress/internal/infra/postgres"
	"github.com/aliskhannn/boulder-progress/internal/scheduler"
)

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Apply database migrations before serving")

	return cmd
}

func runServe(ctx context.Context, migrate bool) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if migrate {
		dsn, _ := a.cfg.DB.DSN()
		if err := postgres.Migrate(dsn); err != nil {
			return err
		}
		a.logger.Info("migrations applied")
	}

	resetSpec := ""
	if a.cfg.Reset.ScheduleEnabled {
		resetSpec = a.cfg.Reset.Cron
	}
	jobs := scheduler.New(a.reset, a.auth, a.metrics, a.logger.Named("scheduler"), scheduler.Options{
		ResetSpec: resetSpec,
		Location:  a.location(),
	})
	if err := jobs.Start(ctx); err != nil {
		return err
	}
	defer jobs.Stop()

	handler := rest.NewHandler(
		a.auth,
		a.catalog,
		a.progress,
		a.reset,
		a.metrics,
		a.metrics.Handler(),
		a.logger.Named("http"),
		rest.Options{
			AllowedOrigin: a.cfg.HTTP.AllowedOrigin,
			AuthRateLimit: a.cfg.HTTP.AuthRateLimit,
			AuthRateBurst: a.cfg.HTTP.AuthRateBurst,
			Location:      a.location(),
		},
	)

	server := &http.Server{
		Addr:         a.cfg.HTTP.Addr,
		Handler:      handler.Router(),
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.logger.Info("http server stopped")

	return nil
}
