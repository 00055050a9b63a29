package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yamine-coder/gestion-rh-sub000/config"
)

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://backend.local/api")
	t.Setenv("PORT", "9090")
	t.Setenv("OVERRIDE_TTL", "10m")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "http://backend.local/api", cfg.BackendURL)
	assert.Equal(t, 10*time.Minute, cfg.OverrideTTL)
	assert.Equal(t, "overrides.db", cfg.DatabasePath)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_RequiresBackendURL(t *testing.T) {
	t.Setenv("BACKEND_URL", "")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_MalformedIntFallsBack(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://backend.local/api")
	t.Setenv("PORT", "not-a-port")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
}
