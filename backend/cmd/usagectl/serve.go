package main

import (
	"github.com/spf13/cobra"

	"usagereport/backend/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the usage report HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Run(cmd.Context(), cfg, logger)
	},
}
