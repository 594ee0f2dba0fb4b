package cmd

import (
	"github.com/Richard-GOZAN/imdb-analytics-platform/actions"
	"github.com/spf13/cobra"
)

var createStageCfg = actions.CreateStageConfig{}

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Create the Snowflake external STAGE pointing to the S3 bucket",
	Long: `Create the Snowflake external STAGE pointing to the S3 bucket, plus the bronze
schema and the parquet file format that loads depend on. The DDL is printed by
default; use --execute-ddl to run it against the warehouse.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		createStageCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunCreateStage(&createStageCfg)
	},
}

func init() {
	createCmd.AddCommand(stageCmd)
	stageCmd.Flags().SortFlags = false
	switches.addFlag(stageCmd, &createStageCfg.StorageIntegration, "storage-integration", "", false, "")
	switches.addFlag(stageCmd, &createStageCfg.ExecuteDDL, "execute-ddl", "false", false, "")
	switches.addFlag(stageCmd, &createStageCfg.LogLevel, "log-level", "error", false, "")
}
