package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usagereport/backend/config"
)

func TestPostgresDSN(t *testing.T) {
	base := config.Config{
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "report",
		DBPassword: "pw",
		DBName:     "lms",
	}

	tests := []struct {
		name     string
		timezone string
		want     string
	}{
		{"local zone is left to the server", "Local", "host=db user=report password=pw dbname=lms port=5432 sslmode=disable"},
		{"named zone", "Europe/Berlin", "host=db user=report password=pw dbname=lms port=5432 sslmode=disable TimeZone=Europe/Berlin"},
		{"utc", "UTC", "host=db user=report password=pw dbname=lms port=5432 sslmode=disable TimeZone=UTC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.Timezone = tt.timezone
			assert.Equal(t, tt.want, PostgresDSN(&cfg))
		})
	}
}

func TestPostgresDSN_DefaultConfig(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("TIMEZONE", "Local")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.NotContains(t, PostgresDSN(cfg), "TimeZone")
}
