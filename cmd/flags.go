package cmd

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/Richard-GOZAN/imdb-analytics-platform/helper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type cliFlag struct {
	name      string // name of flag
	val       string // default value
	shortHand string // single character name for the flag
	desc      string // description of the flag; the long text
}

type cliFlags map[string]cliFlag

var switches = cliFlags{
	"tables": cliFlag{name: "tables", shortHand: "t",
		desc: "CSV of dataset names to process (e.g. 'title.ratings,name.basics'). \n" +
			"Leave blank for the full catalogue"},
	"force-download": cliFlag{name: "force-download", shortHand: "f",
		desc: "Re-download and re-convert datasets even when local artifacts exist"},
	"skip-load": cliFlag{name: "skip-load", shortHand: "s",
		desc: "Stop after publishing to S3 and skip the warehouse load \n" +
			"(no Snowflake DSN required)"},
	"fail-fast": cliFlag{name: "fail-fast", shortHand: "F",
		desc: "Abort the run on the first dataset failure instead of continuing \n" +
			"with the remaining datasets"},
	"cleanup": cliFlag{name: "cleanup", shortHand: "c",
		desc: "Delete local raw artifacts after a fully successful run \n" +
			"(skipped if any dataset failed)"},
	"keep-parquet": cliFlag{name: "keep-parquet", shortHand: "k",
		desc: "Keep local parquet artifacts when cleaning up"},
	"dry-run": cliFlag{name: "dry-run", shortHand: "d",
		desc: "Print the run configuration (or SQL) without executing it"},
	"log-level": cliFlag{name: "log-level", shortHand: "l",
		desc: "Log level: \"error | warn | info | debug\""},
	"print-header": cliFlag{name: "print-header", shortHand: "x",
		desc: "Print a header for SQL query results (defaults to true on a terminal)"},
	"storage-integration": cliFlag{name: "storage-integration", shortHand: "i",
		desc: "Snowflake storage integration granting the stage access to the bucket \n" +
			"(omit when credentials come from the environment)"},
	"execute-ddl": cliFlag{name: "execute-ddl", shortHand: "e",
		desc: "Execute the generated DDL against the warehouse (otherwise it's printed only)"},
}

// addFlag adds a flag to cobra.Command c, based on the type of targetVar (which must be a pointer).
// The name of the flag is looked up in map cliFlags.
// The default value comes from the environment variable for the supplied name when set,
// else the supplied defaultValue is used.
// The flag is marked as required in Cobra based on the value of required, and a value
// from the environment satisfies the requirement.
// Supply a value for desc2 to append to the existing description found in map cliFlags.
func (f *cliFlags) addFlag(c *cobra.Command, targetVar interface{}, name string, defaultValue string, required bool, desc2 string) {
	v := reflect.ValueOf(targetVar)
	if v.Kind() != reflect.Ptr {
		fmt.Println("error adding flag: targetVar must be a pointer")
		os.Exit(1)
	}
	sw, fromEnv := f.getCliFlag(name, defaultValue)
	desc := sw.desc + desc2
	envTxt := fmt.Sprintf(" (env: %v)", flagNameToEnvVar(name))
	// Apply the flag.
	switch p := targetVar.(type) {
	case *string:
		c.Flags().StringVarP(p, sw.name, sw.shortHand, sw.val, desc+envTxt)
	case *bool:
		defaultBool := strings.ToLower(sw.val) == "true"
		c.Flags().BoolVarP(p, sw.name, sw.shortHand, defaultBool, desc+envTxt)
	case *int:
		defaultInt, err := strconv.Atoi(sw.val)
		if err != nil {
			fmt.Printf("the value for flag %q must be an integer: %v\n", sw.name, err)
			os.Exit(1)
		}
		c.Flags().IntVarP(p, sw.name, sw.shortHand, defaultInt, desc+envTxt)
	case *[]string:
		defaultSlice := make([]string, 0)
		if sw.val != "" {
			defaultSlice = strings.Split(sw.val, ",")
		}
		c.Flags().StringSliceVarP(p, sw.name, sw.shortHand, defaultSlice, desc+envTxt)
	default:
		panic("Error: unhandled CLI flag target value type")
	}
	if fromEnv { // if the environment supplied a value...
		// Signal that the flag was set so required flags are satisfied.
		mustSetFlag(c.Flags(), sw.name, sw.val)
	}
	// Optionally mark the flag as mandatory.
	if required {
		_ = c.MarkFlagRequired(sw.name)
	}
}

// getCliFlag fetches the value of name from the environment.
// If a value cannot be found then the supplied defaultValue is used in its place.
func (f *cliFlags) getCliFlag(name string, defaultValue string) (cliFlag, bool) {
	s, ok := switches[name]
	if !ok {
		panic(fmt.Sprintf("unregistered CLI flag, %q", name))
	}
	fromEnv := true
	if err := helper.ReadValueFromEnv(flagNameToEnvVar(name), &s.val); err != nil { // if there's no value for the env var...
		// Apply the default.
		s.val = defaultValue
		fromEnv = false
	}
	return s, fromEnv
}

// flagNameToEnvVar will form a sanitised environment variable name using constants.EnvVarPrefix.
func flagNameToEnvVar(name string) string {
	return helper.EnvVarName(name)
}

func mustSetFlag(f *pflag.FlagSet, name string, val string) {
	if err := f.Set(name, val); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
