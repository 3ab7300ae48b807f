package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/thereadylab/readylab-api/internal/database"
	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/pkg/config"
)

var workerCount int

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the background job workers",
	Long: `Run the background worker pool without the HTTP server.

Use this to scale job processing (caption translation, notification
emails) separately from the API. Disable processing.embedded_workers on
the API deployment when dedicated workers run.

Example:
  readylab-api worker
  readylab-api worker --workers 4`,
	RunE: runWorkers,
}

func init() {
	rootCmd.AddCommand(workerCmd)

	workerCmd.Flags().IntVar(&workerCount, "workers", 0, "number of workers (overrides config)")
}

func runWorkers(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if workerCount > 0 {
		cfg.Processing.Workers = workerCount
	}

	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("[WARN] Failed to close database: %v", err)
		}
	}()

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	deps := buildDependencies(cfg, db)
	pool := buildWorkerPool(cfg, deps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pool.Start(ctx); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}

	log.Printf("[INFO] Worker pool running with %d workers", cfg.Processing.Workers)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("[INFO] Stopping worker pool...")
	pool.Stop()
	log.Println("[INFO] Worker pool stopped")
	return nil
}
