package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Default values may be set at compile time.
	version          = "0.1.0"
	buildDate        = "2026-01-02T03:04+0500"
	stackDumpOnPanic bool
)

var rootCmd = &cobra.Command{
	Use: "imdb",
	Long: `
imdb is a DataOps utility that ingests the public IMDb datasets into an
analytics warehouse. Each dataset is downloaded as gzipped TSV, converted to
Parquet, published to an S3 bucket and loaded into Snowflake through an
external stage. Runs are idempotent: artifacts already present locally are
reused, so a failed run can be retried cheaply.

Configure via IMDB_* environment variables (see 'imdb ingest --help') and
use AWS environment variables for bucket access.`,
}

func init() {
	// General setup.
	cobra.EnableCommandSorting = false
	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&stackDumpOnPanic, "print-stack", false, "Print a stack dump if there is a panic")
	_ = rootCmd.PersistentFlags().MarkHidden("print-stack")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Execute() prints the error.
		os.Exit(1)
	}
}
