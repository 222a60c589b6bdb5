package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"usagereport/backend/config"
	"usagereport/backend/server"
	"usagereport/backend/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Error loading config", "err", err)
	}

	// Initialize logger
	logger := utils.InitLogger(utils.LoggerConfig{
		Format: cfg.LogFormat,
		Level:  cfg.LogLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", "err", err)
	}
}
