package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"usagereport/backend/config"
	"usagereport/backend/utils"
)

var (
	cfg    *config.Config
	logger *log.Logger

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "usagectl",
	Short: "Course usage reports from the command line",
	Long: `usagectl builds course usage reports straight from the platform
database, or starts the report HTTP API.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return err
		}
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger = utils.InitLogger(utils.LoggerConfig{
			Format: cfg.LogFormat,
			Level:  level,
			Output: os.Stderr,
			Prefix: "usagectl",
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(exportCmd, serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
