package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "classtrack", cfg.Database.DBName)

	// Pipeline tuning defaults
	assert.Equal(t, time.Second, cfg.Stream.SampleInterval)
	assert.Equal(t, 5, cfg.Stream.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.Stream.RetryBaseDelay)
	assert.Equal(t, 10*time.Second, cfg.Stream.RetryMaxDelay)
	assert.Equal(t, 3, cfg.Stream.MaxReadFailures)
	assert.Equal(t, "UTC", cfg.Stream.Timezone)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9999")
	t.Setenv("STREAM_SAMPLE_INTERVAL", "2s")
	t.Setenv("STREAM_MAX_RETRIES", "7")
	t.Setenv("STREAM_TIMEZONE", "Asia/Bangkok")
	t.Setenv("FACE_API_ENABLED", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.App.Port)
	assert.Equal(t, 2*time.Second, cfg.Stream.SampleInterval)
	assert.Equal(t, 7, cfg.Stream.MaxRetries)
	assert.Equal(t, "Asia/Bangkok", cfg.Stream.Timezone)
	assert.False(t, cfg.FaceAPI.Enabled)
}

func TestLoadConfigIgnoresMalformedEnv(t *testing.T) {
	t.Setenv("STREAM_MAX_RETRIES", "many")
	t.Setenv("STREAM_SAMPLE_INTERVAL", "soon")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Stream.MaxRetries)
	assert.Equal(t, time.Second, cfg.Stream.SampleInterval)
}
