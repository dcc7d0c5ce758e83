// Command congress-trades runs the congressional trade disclosure pipeline.
package main

import (
	"os"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	appName = "congress-trades"
	version = "v1.0.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Congressional trade disclosure pipeline",
		Version: version,
		Long: `congress-trades fetches legislator securities disclosures from the configured
sources, normalizes and deduplicates them, flags committee conflicts and
publishes a JSON artifact with popular stocks, sector, party and trader rollups.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to YAML config (built-in defaults when empty)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Environment file loaded before the config")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run one batch and publish the artifact",
		Long:  "Fetch every source tier in order, select the first tier with enough records, aggregate and publish",
		RunE:  runPipeline,
	}
	runCmd.Flags().String("output-dir", "", "Override output.dir")
	runCmd.Flags().String("log-level", "", "Override log.level")
	runCmd.Flags().Bool("no-store", false, "Skip database persistence even when DSNs are configured")

	validateCmd := &cobra.Command{
		Use:   "validate-config",
		Short: "Validate the configuration and report source credentials",
		RunE:  runValidateConfig,
	}

	referenceCmd := &cobra.Command{
		Use:   "reference",
		Short: "Print the effective reference data as YAML",
		RunE:  runReference,
	}

	rootCmd.AddCommand(runCmd, validateCmd, referenceCmd, newRunsCmd())
	return rootCmd
}
