package config

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		DBDriver:          "sqlite",
		DBPath:            "./test.db",
		JWTSecret:         "secret",
		ServerPort:        "8080",
		Timezone:          "UTC",
		ReportDefaultDays: 7,
		ReportMaxDays:     366,
		ReportCacheSize:   10,
		ReportCacheTTL:    time.Minute,
		ViewerRoles:       []string{"teacher"},
		LogFormat:         "text",
		LogLevel:          "info",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			name:    "non-numeric port",
			mutate:  func(c *Config) { c.ServerPort = "abc" },
			wantErr: "invalid server port 'abc': must be a number",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.ServerPort = "70000" },
			wantErr: "invalid server port 70000: must be between 1 and 65535",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.DBDriver = "mysql" },
			wantErr: "invalid db driver 'mysql'",
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.DBPath = "" },
			wantErr: "DB_PATH is required",
		},
		{
			name:    "bad timezone",
			mutate:  func(c *Config) { c.Timezone = "Mars/Olympus" },
			wantErr: "invalid timezone 'Mars/Olympus'",
		},
		{
			name:    "default days above max",
			mutate:  func(c *Config) { c.ReportDefaultDays = 400 },
			wantErr: "invalid report default days 400",
		},
		{
			name:    "cache without ttl",
			mutate:  func(c *Config) { c.ReportCacheTTL = 0 },
			wantErr: "REPORT_CACHE_TTL must be positive",
		},
		{
			name:    "no viewer roles",
			mutate:  func(c *Config) { c.ViewerRoles = nil },
			wantErr: "REPORT_VIEWER_ROLES cannot be empty",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: "invalid log format 'xml'",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "loud" },
			wantErr: "invalid log level 'loud'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ValidateCollectsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.ServerPort = "abc"
	cfg.LogFormat = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")
	assert.Contains(t, err.Error(), "invalid log format")
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/usage.db")
	t.Setenv("TIMEZONE", "Europe/Berlin")
	t.Setenv("REPORT_VIEWER_ROLES", " teacher, manager ,,")
	t.Setenv("REPORT_CACHE_TTL", "30s")
	t.Setenv("SITE_URL", "https://lms.example.org/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, []string{"teacher", "manager"}, cfg.ViewerRoles)
	assert.Equal(t, 30*time.Second, cfg.ReportCacheTTL)
	assert.Equal(t, "https://lms.example.org", cfg.SiteURL)
	assert.Equal(t, "Europe/Berlin", cfg.Location().String())
}
