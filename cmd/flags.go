package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func mustGetString(cmd *cobra.Command, name string) string {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not read flag %q: %v\n", name, err)
		os.Exit(1)
	}
	return value
}

func mustGetInt(cmd *cobra.Command, name string) int {
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not read flag %q: %v\n", name, err)
		os.Exit(1)
	}
	return value
}

func mustGetFloat64(cmd *cobra.Command, name string) float64 {
	value, err := cmd.Flags().GetFloat64(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not read flag %q: %v\n", name, err)
		os.Exit(1)
	}
	return value
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not read flag %q: %v\n", name, err)
		os.Exit(1)
	}
	return value
}
