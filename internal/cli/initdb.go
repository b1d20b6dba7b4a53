package cli

import (
	"github.com/deppfellow/people-api/internal/database"
	"github.com/spf13/cobra"
)

// NewInitDBCommand creates the people table and its index if they are
// absent, then exits. serve does the same on startup.
func NewInitDBCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, loggerService, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer loggerService.Shutdown()

			db, err := database.New(cfg, &log, loggerService, nil)
			if err != nil {
				return err
			}

			log.Info().Str("driver", db.Driver()).Msg("database schema is ready")
			return db.Close()
		},
	}
}
