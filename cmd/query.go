package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/Richard-GOZAN/imdb-analytics-platform/actions"
	"github.com/Richard-GOZAN/imdb-analytics-platform/config"
	"github.com/Richard-GOZAN/imdb-analytics-platform/helper"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const queryArgsDefinitionTxt string = "<SQL-optionally-quoted>"

var queryCmd = &cobra.Command{
	Use:   "query " + queryArgsDefinitionTxt,
	Short: "Run a SQL query against the warehouse",
	Long: `Execute a query by supplying the SQL as a plain argument.
It's only necessary to wrap the statement in quotes if it contains special characters
that will be interpreted by your shell. You can use a dry-run to check formatting.
Results are returned as CSV lines; a header is printed when stdout is a terminal.
The connection uses the DSN in ` + helper.EnvVarName("snowflake-dsn") + `.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("requires the SQL to execute as a single argument")
		}
		queryCfg.Query = args[0]
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.FromEnv()
		if err != nil {
			return err
		}
		queryCfg.Dsn = c.SnowflakeDsn
		queryCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunQuery(&queryCfg)
	},
}

var queryCfg = actions.QueryConfig{
	LogLevel: "error",
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().SortFlags = false
	queryCmd.SilenceUsage = true // avoid dumping command help when a SQL syntax error occurs.
	switches.addFlag(queryCmd, &queryCfg.LogLevel, "log-level", "error", false, "")
	switches.addFlag(queryCmd, &queryCfg.DryRun, "dry-run", "false", false, "")
	switches.addFlag(queryCmd, &queryCfg.PrintHeader, "print-header",
		fmt.Sprint(isatty.IsTerminal(os.Stdout.Fd())), false, "")
}
