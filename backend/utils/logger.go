package utils

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// LoggerConfig определяет конфигурацию для логгера
type LoggerConfig struct {
	// text or json
	Format string
	Level  string
	Output io.Writer
	Prefix string
}

// InitLogger инициализирует и возвращает логгер
func InitLogger(config ...LoggerConfig) *log.Logger {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "usage-report"
	}

	logger := log.NewWithOptions(cfg.Output, log.Options{
		Prefix:          cfg.Prefix,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})

	if cfg.Format == "json" {
		logger.SetFormatter(log.JSONFormatter)
	}
	if level, err := log.ParseLevel(cfg.Level); err == nil {
		logger.SetLevel(level)
	}

	return logger
}
