package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sincelast/internal/api"
	"sincelast/internal/bootstrap"
	"sincelast/internal/bootstrap/logging"
	"sincelast/internal/errs"
	"sincelast/internal/usecase/auth"
	"sincelast/internal/usecase/tracker"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, trackerSvc *tracker.Service, authSvc *auth.Service) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = logging.WithAttrs(ctx, slog.String("command", cmd.CommandPath()))

		if err := app.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "initialize schema")
		}

		addr := net.JoinHostPort(app.Config.Server.Host, fmt.Sprintf("%d", app.Config.Server.Port))
		server := api.NewServer(trackerSvc, authSvc, app.Config)
		httpServer := &http.Server{
			Addr:              addr,
			Handler:           server.Router(),
			ReadHeaderTimeout: 5 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return ctx },
		}

		serveErr := make(chan error, 1)
		go func() {
			logging.Info(ctx, "http server listening", slog.String("addr", addr))
			serveErr <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-serveErr:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errs.Wrap(err, "serve http")
			}
		case <-ctx.Done():
			logging.Info(ctx, "shutting down http server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return errs.Wrap(err, "shutdown http server")
			}
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
