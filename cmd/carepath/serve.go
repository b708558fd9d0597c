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

	"github.com/warp/carepath/api"
)

func newServeCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, global)
			if err != nil {
				return err
			}
			defer a.Close()
			return runServe(cmd.Context(), a)
		},
	}
}

func runServe(ctx context.Context, a *app) error {
	// The catalog is reference data every plan depends on.
	added, err := a.store.LoadStandardInitiatives(ctx)
	if err != nil {
		return withCode(exitDB, err)
	}
	if added > 0 {
		a.log.WithField("added", added).Info("standard initiatives loaded")
	}

	router := api.NewRouter(a.handler, api.RouterOptions{
		AllowedOrigins: a.cfg.CORSOrigins,
		MetricsPath:    a.cfg.MetricsPath,
	})

	server := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.log.Infof("🚀 Server starting on http://localhost:%d", a.cfg.Port)
		a.log.Infof("📊 API available at http://localhost:%d/api", a.cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
	case <-ctx.Done():
	}

	a.log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.log.WithError(err).Error("Server forced to shutdown")
		return err
	}

	a.log.Info("Server stopped")
	return nil
}
