package cmd

import (
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create warehouse objects used by this tool",
	Long:  `Create warehouse objects used by this tool`,
}

func init() {
	rootCmd.AddCommand(createCmd)
}
