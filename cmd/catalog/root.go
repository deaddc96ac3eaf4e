package main

import (
	"github.com/fekuna/catalog-service/config"
	"github.com/spf13/cobra"
)

// cfg is loaded once in PersistentPreRunE.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Product catalog service",
	Long: `catalog serves brands, categories and products over gRPC and HTTP.

Configuration is read from the environment and from a .env file in the
working directory.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		cfg = config.LoadEnv()
		return cfg.Validate()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
