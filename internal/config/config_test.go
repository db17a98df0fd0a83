package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, "gemini-2.5-flash", cfg.Gateway.Model)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 20*time.Second, cfg.Triage.GatewayTimeout())
	assert.Equal(t, 10*time.Second, cfg.Triage.SubmitTimeout())
	assert.Equal(t, 30*time.Minute, cfg.Triage.SessionIdleTTL())
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("TRIAGE_GATEWAY_TIMEOUT_SECONDS", "5")
	t.Setenv("TRIAGE_SESSION_IDLE_TTL_MINUTES", "0")
	t.Setenv("OTEL_SAMPLING_RATE", "0.25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "key", cfg.Gateway.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Triage.GatewayTimeout())
	assert.Zero(t, cfg.Triage.SessionIdleTTL())
	assert.InDelta(t, 0.25, cfg.Telemetry.SamplingRate, 1e-9)
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")
	_, err := Load()
	assert.Error(t, err)
}

func TestInvalidIntFallsBack(t *testing.T) {
	t.Setenv("TRIAGE_SUBMIT_TIMEOUT_SECONDS", "soon")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Triage.SubmitTimeout())
}
