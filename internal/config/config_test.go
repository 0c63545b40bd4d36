package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("NODE_ENV", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/brokerage")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.LeadLockTTL)
	assert.Equal(t, "postgres://localhost/brokerage", cfg.DatabaseURL)
	assert.True(t, cfg.Environment().IsDevelopment())
}

func TestLoad_Production(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("LEAD_LOCK_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Environment().IsProduction())
	assert.False(t, cfg.Environment().IsDevelopment())
	assert.Equal(t, 30*time.Second, cfg.LeadLockTTL)
}

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	(&Config{LogLevel: "debug"}).SetupLogging()
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	(&Config{LogLevel: "nonsense"}).SetupLogging()
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
