package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerpilot/insights/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "gpt-4o-mini", cfg.ModelName)
	assert.Equal(t, 20*time.Second, cfg.ModelTimeout)
	assert.Equal(t, 1024, cfg.ModelMaxTokens)
	assert.Equal(t, 30*time.Second, cfg.SessionLockTTL)
	assert.Equal(t, 30, cfg.RateLimitPerMin)
	assert.True(t, cfg.IsDev())
	assert.False(t, cfg.AuthEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("MODEL_TIMEOUT", "5s")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.ModelTimeout)
	assert.True(t, cfg.IsProd())
	assert.True(t, cfg.AuthEnabled())
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	_, err := config.Load()
	require.Error(t, err)
}
