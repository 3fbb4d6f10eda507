package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X main.Version=X.Y.Z"
var Version = "0.0.0-dev"

var rootCmd = &cobra.Command{
	Use:   "display",
	Short: "Of-the-day panel: rotates daily content across categories",
	Long: `display rotates through the configured "of the day" categories, showing each
category's entry for today with its subtitle and description alternating.

Commands:
  run        Drive the display (default)
  preview    Show what the display would draw at a given instant
  validate   Load the config and every data source, and report problems
  import     Load a data file into the content database

Configuration comes from the environment (and .env); CONFIG_PATH points at the
YAML or JSON config file (default config.yaml).`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDisplay,
}

func init() {
	addRunFlags(rootCmd)
	addRunFlags(runCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
