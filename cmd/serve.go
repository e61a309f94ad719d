package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"issuetracker/internal/bootstrap"
	"issuetracker/internal/bootstrap/logging"
	"issuetracker/internal/errs"
	"issuetracker/internal/transport/httpapi"
	"issuetracker/internal/usecase/issues"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *issues.Service) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := app.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "initialize schema")
		}

		addr := app.Config.HTTP.Addr
		if override, _ := cmd.Flags().GetString("addr"); override != "" {
			addr = override
		}
		ctx = logging.WithAttrs(ctx, slog.String("addr", addr))

		api := httpapi.NewServer(svc, httpapi.Options{AllowedOrigins: app.Config.HTTP.AllowedOrigins})
		server := newHTTPServer(ctx, addr, api.Router(), app.Config.HTTP.ReadTimeout)

		serveErr := make(chan error, 1)
		go func() {
			logging.Info(ctx, "http server listening")
			serveErr <- server.ListenAndServe()
		}()

		select {
		case err := <-serveErr:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			logging.Error(ctx, "http server failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "listen and serve")
		case <-ctx.Done():
		}

		logging.Info(ctx, "shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errs.Wrap(err, "shutdown http server")
		}
		return nil
	}),
}

// newHTTPServer gives every request the logging values of ctx but not its cancellation,
// so a shutdown signal lets in-flight requests finish while Shutdown drains them.
func newHTTPServer(ctx context.Context, addr string, handler http.Handler, readTimeout time.Duration) *http.Server {
	base := context.WithoutCancel(ctx)
	return &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: readTimeout,
		BaseContext: func(net.Listener) context.Context { return base },
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default from http.addr)")
}
