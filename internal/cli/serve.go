package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/usermgmt/admin-console/internal/api"
	"github.com/usermgmt/admin-console/internal/api/handler"
	"github.com/usermgmt/admin-console/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the console HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, rt.app)
		},
	}
}

func serve(ctx context.Context, app *App) error {
	log := logger.Component("http")

	router := api.NewRouter(api.Deps{
		Log:      log,
		Session:  app.Session,
		Login:    app.Login,
		Register: app.Register,
		Users:    app.Users,
		Health:   map[string]handler.Pinger{app.Store.Driver: app.Store},
	})

	server := &http.Server{
		Addr:              app.Config.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Uploads and backend round trips bound the write side.
		WriteTimeout: app.Config.API.Timeout + 10*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("store", app.Store.Driver).Msg("starting console API")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
			return err
		}
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	log.Info().Msg("server stopped")
	return nil
}
