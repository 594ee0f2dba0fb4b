package cmd

import (
	"os"

	"github.com/Richard-GOZAN/imdb-analytics-platform/actions"
	"github.com/spf13/cobra"
)

var ingestCfg = actions.IngestConfig{}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest the IMDb datasets into the warehouse",
	Long: `Ingest the IMDb datasets: download gzipped TSV files, convert them to Parquet,
publish them to the S3 bucket behind the external stage and load them into the
bronze schema in Snowflake. Each dataset is a full reload.

The process exit code reports the aggregate outcome:
  0  all datasets succeeded
  1  some datasets failed
  2  no dataset succeeded, or the configuration was invalid`,
	Run: func(cmd *cobra.Command, args []string) {
		ingestCfg.StackDumpOnPanic = stackDumpOnPanic
		if code := actions.RunIngest(&ingestCfg); code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().SortFlags = false
	ingestCmd.SilenceUsage = true
	switches.addFlag(ingestCmd, &ingestCfg.Tables, "tables", "", false, "")
	switches.addFlag(ingestCmd, &ingestCfg.ForceDownload, "force-download", "false", false, "")
	switches.addFlag(ingestCmd, &ingestCfg.SkipLoad, "skip-load", "false", false, "")
	switches.addFlag(ingestCmd, &ingestCfg.FailFast, "fail-fast", "false", false, "")
	switches.addFlag(ingestCmd, &ingestCfg.Cleanup, "cleanup", "false", false, "")
	switches.addFlag(ingestCmd, &ingestCfg.KeepParquet, "keep-parquet", "true", false, "")
	switches.addFlag(ingestCmd, &ingestCfg.DryRun, "dry-run", "false", false, "")
	switches.addFlag(ingestCmd, &ingestCfg.LogLevel, "log-level", "", false, "")
}
