package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "callisto",
	Short: "Callisto - retention sweeper for the onboarding add-in",
	Long: `Callisto removes the onboarding add-in from new-hire accounts once
their installation age exceeds the configured retention threshold, then
deletes the matching records from the user store.

The sweeper runs perpetually, revokes before deleting so no record is
lost while its revocation is still pending, and picks up retention
threshold changes without a restart.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
