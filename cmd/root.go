package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/thereadylab/readylab-api/pkg/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "readylab-api",
	Short: "The Ready Lab API server",
	Long: `The Ready Lab API - backend for an online-education platform

The API serves courses, lessons, learning tracks, quizzes, communities,
live events, and subscriptions, and runs the background pipeline that
translates video captions into additional languages.

Features:
  • Course catalog with video lessons and free previews
  • Enrollments with per-lesson progress tracking
  • Quizzes with graded, attempt-limited submissions
  • Communities with posts, comments, and likes
  • Live events backed by provider live streams
  • Webhook-driven caption translation pipeline`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates a new root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	// Set up configuration loading with lazy initialization
	cobra.OnInitialize(loadConfig)

	// Add persistent flags for logging configuration
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
}

// loadConfig loads the configuration when a command needs it
// This is called lazily only when a command that needs config runs
func loadConfig() {
	// Skip config loading for commands that don't need it
	cmd, _, _ := rootCmd.Find(os.Args[1:])
	if cmd != nil && (cmd.Name() == "version" || cmd.Name() == "help") {
		return
	}

	// Initialize the configuration
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}
