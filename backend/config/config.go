package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPath        string
	DBAutoMigrate bool

	// HTTP
	JWTSecret  string
	ServerPort string
	SiteURL    string

	// Report
	Timezone          string
	ReportDefaultDays int
	ReportMaxDays     int
	ReportCacheSize   int
	ReportCacheTTL    time.Duration
	ViewerRoles       []string
	DeanonymizeRoles  []string

	// Logging
	LogFormat string
	LogLevel  string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		DBDriver:      getEnv("DB_DRIVER", "postgres"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "learning_platform"),
		DBPath:        getEnv("DB_PATH", "./data/usage.db"),
		DBAutoMigrate: getEnvBool("DB_AUTO_MIGRATE", false),

		JWTSecret:  getEnv("JWT_SECRET", "secret"),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		SiteURL:    strings.TrimRight(getEnv("SITE_URL", "http://localhost:8080"), "/"),

		Timezone:          getEnv("TIMEZONE", "Local"),
		ReportDefaultDays: getEnvInt("REPORT_DEFAULT_DAYS", 7),
		ReportMaxDays:     getEnvInt("REPORT_MAX_DAYS", 366),
		ReportCacheSize:   getEnvInt("REPORT_CACHE_SIZE", 100),
		ReportCacheTTL:    getEnvDuration("REPORT_CACHE_TTL", 5*time.Minute),
		ViewerRoles:       getEnvList("REPORT_VIEWER_ROLES", []string{"manager", "editingteacher", "teacher"}),
		DeanonymizeRoles:  getEnvList("REPORT_DEANONYMIZE_ROLES", []string{"manager"}),

		LogFormat: getEnv("LOG_FORMAT", "text"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate collects every configuration problem into a single error.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.ServerPort); err != nil {
		problems = append(problems, fmt.Sprintf("invalid server port '%s': must be a number", c.ServerPort))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid server port %d: must be between 1 and 65535", port))
	}

	switch c.DBDriver {
	case "postgres":
		if c.DBHost == "" || c.DBName == "" {
			problems = append(problems, "DB_HOST and DB_NAME are required for the postgres driver")
		}
	case "sqlite":
		if c.DBPath == "" {
			problems = append(problems, "DB_PATH is required for the sqlite driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid db driver '%s': must be one of [postgres sqlite]", c.DBDriver))
	}

	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET cannot be empty")
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if c.ReportMaxDays < 1 {
		problems = append(problems, fmt.Sprintf("invalid report max days %d: must be at least 1", c.ReportMaxDays))
	}
	if c.ReportDefaultDays < 1 || c.ReportDefaultDays > c.ReportMaxDays {
		problems = append(problems, fmt.Sprintf("invalid report default days %d: must be between 1 and %d", c.ReportDefaultDays, c.ReportMaxDays))
	}
	if c.ReportCacheSize < 0 {
		problems = append(problems, fmt.Sprintf("invalid report cache size %d: must not be negative", c.ReportCacheSize))
	}
	if c.ReportCacheSize > 0 && c.ReportCacheTTL <= 0 {
		problems = append(problems, "REPORT_CACHE_TTL must be positive when the cache is enabled")
	}
	if len(c.ViewerRoles) == 0 {
		problems = append(problems, "REPORT_VIEWER_ROLES cannot be empty")
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Location is the timezone report days are bucketed in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
