package main

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront backend service",
	Long: `Storefront serves the product catalog together with per-session
cart, sign-in and manual product ordering state.

Available subcommands:
  serve   - Run the HTTP API and gRPC health server
  catalog - Print the product catalog as a table`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (defaults to $CONFIG_FILE)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(catalogCmd)
}
