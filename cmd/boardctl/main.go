package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose         bool
	feedsConfig     string
	eventsURL       string
	applicationsURL string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "boardctl",
	Short: "Inspect the volunteer board feeds from a terminal",
	Long: `boardctl loads the event and application feeds the board service reads
and prints the same views the web panels show.

Feed URLs come from the feeds registry (FEEDS_CONFIG or the embedded
default, with ${EVENTS_CSV_URL} and ${APPLICATIONS_CSV_URL} expanded) and
can be overridden per run with --events-url and --applications-url.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&feedsConfig, "feeds-config", os.Getenv("FEEDS_CONFIG"), "path to a feeds registry YAML")
	rootCmd.PersistentFlags().StringVar(&eventsURL, "events-url", "", "override the events feed URL")
	rootCmd.PersistentFlags().StringVar(&applicationsURL, "applications-url", "", "override the applications feed URL")

	rootCmd.AddCommand(eventsCmd, facetsCmd, applicationsCmd, previewCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
