package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thereadylab/readylab-api/internal/database"
	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/pkg/config"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Apply the database schema for The Ready Lab API.

This runs GORM auto-migration for every model: tables and indexes are
created or extended to match the current schema. Columns are never
dropped.

Example:
  readylab-api migrate
  readylab-api migrate --dry-run`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().Bool("dry-run", false, "list the models without touching the database")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	allModels := models.AllModels()

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if dryRun {
		fmt.Printf("Dry run - %d models would be migrated against %s\n", len(allModels), cfg.Database.Path)
		for _, m := range allModels {
			fmt.Printf("  %T\n", m)
		}
		return nil
	}

	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.AutoMigrate(allModels...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Printf("Migrated %d models against %s\n", len(allModels), cfg.Database.Path)
	return nil
}
