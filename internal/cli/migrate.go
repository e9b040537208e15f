package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/fpstudy/internal/adapters/turso"
	"github.com/emiliopalmerini/fpstudy/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run database migrations",
	Long: `Run migrations of the run database.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  fpstudy migrate      # Run all pending migrations
  fpstudy migrate 1    # Migrate to version 1
  fpstudy migrate 0    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	db, err := turso.NewDB(databaseConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	currentVersion, allMigrations, err := migrate.Prepare(ctx, db.DB)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d\n", currentVersion)

	if len(args) == 0 {
		return migrate.MigrateUp(ctx, db.DB, allMigrations, currentVersion)
	}

	targetVersion, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid version number: %s", args[0])
	}
	return migrate.MigrateTo(ctx, db.DB, allMigrations, currentVersion, targetVersion)
}
