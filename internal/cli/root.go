// Package cli wires the people-api commands.
package cli

import (
	"github.com/deppfellow/people-api/internal/config"
	"github.com/deppfellow/people-api/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command. Without a subcommand it serves.
func NewRootCommand() *cobra.Command {
	serve := NewServeCommand()

	cmd := &cobra.Command{
		Use:           "people-api",
		Short:         "People API",
		Long:          "A CRUD HTTP service for person records backed by a relational table.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          serve.RunE,
	}

	// The bare root command serves with serve's defaults.
	cmd.Flags().AddFlagSet(serve.Flags())

	cmd.AddCommand(serve)
	cmd.AddCommand(NewInitDBCommand())

	return cmd
}

// bootstrap loads the config and builds the loggers every command needs.
func bootstrap() (*config.Config, *logger.LoggerService, zerolog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}

	loggerService, err := logger.NewLoggerService(cfg.Observability)
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	return cfg, loggerService, log, nil
}
