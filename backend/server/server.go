package server

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"usagereport/backend/cache"
	"usagereport/backend/config"
	"usagereport/backend/routes"
	"usagereport/backend/utils"
)

const shutdownTimeout = 10 * time.Second

// Run serves the HTTP API until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	db, err := utils.InitDB(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	app, service := routes.NewApp(db, cfg, logger)

	cleanup := cache.NewManager(logger.WithPrefix("cache"))
	if c := service.Cache(); c != nil {
		cleanup.Register(c)
		cleanup.Start(cfg.ReportCacheTTL)
	}
	defer cleanup.Stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.ServerPort, "db", cfg.DBDriver, "timezone", cfg.Timezone)
		errCh <- app.Listen(":" + cfg.ServerPort)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
