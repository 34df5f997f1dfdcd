package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Raj-Randive/soar-school-management-system/internal/bootstrap"
	"github.com/Raj-Randive/soar-school-management-system/internal/config"
	"github.com/Raj-Randive/soar-school-management-system/internal/loader"
	"github.com/Raj-Randive/soar-school-management-system/internal/observability"
	"github.com/Raj-Randive/soar-school-management-system/internal/persistence"
)

var dryRun bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the schema for every registered entity",
	RunE: func(cmd *cobra.Command, args []string) error {
		entities, err := loader.Load(persistence.Entities(), bootstrap.EntitiesPattern)
		if err != nil {
			return err
		}

		if dryRun {
			ordered, err := persistence.SchemaOrder(entities)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range ordered {
				fmt.Fprintf(out, "-- %s\n%s\n", e.Table, strings.TrimSpace(e.Schema))
			}
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger, err := observability.NewLogger(cfg.Logger)
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		defer logger.Sync() //nolint:errcheck

		pg, err := persistence.NewPostgres(cmd.Context(), cfg.Postgres, logger)
		if err != nil {
			return fmt.Errorf("failed to connect postgres: %w", err)
		}
		if !pg.Enabled() {
			return errors.New("POSTGRES_DSN is required to migrate")
		}
		defer pg.Close()

		return persistence.RunMigrations(cmd.Context(), pg.Pool, entities, logger)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the ordered schema without connecting")
}
