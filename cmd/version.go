package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// set by the build pipeline
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the application version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("face-attendance %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
