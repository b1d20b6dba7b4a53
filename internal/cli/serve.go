package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/people-api/internal/handler"
	"github.com/deppfellow/people-api/internal/repository"
	"github.com/deppfellow/people-api/internal/router"
	"github.com/deppfellow/people-api/internal/server"
	"github.com/deppfellow/people-api/internal/service"
	"github.com/deppfellow/people-api/static"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// ServeOptions holds the serve command flags.
type ServeOptions struct {
	ShutdownTimeout time.Duration
}

// NewServeCommand runs the HTTP server until SIGINT or SIGTERM, then drains
// in-flight requests, closes the database and flushes New Relic.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().DurationVar(&opts.ShutdownTimeout, "shutdown-timeout", 30*time.Second, "time allowed for in-flight requests on shutdown")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, loggerService, log, err := bootstrap()
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		loggerService.Shutdown()
		return err
	}

	repos := repository.NewRepositories(srv)

	services, err := service.NewService(srv, repos)
	if err != nil {
		return errors.Wrap(err, "could not create services")
	}

	handlers := handler.NewHandlers(srv, services, static.FS)
	srv.SetupHTTPServer(router.NewRouter(srv, handlers))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()

	select {
	case err = <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("server stopped unexpectedly")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error().Err(shutdownErr).Msg("server forced to shutdown")
		if err == nil {
			err = shutdownErr
		}
	}

	log.Info().Msg("server exited")
	return err
}
