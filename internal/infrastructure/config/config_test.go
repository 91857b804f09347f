package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp switches to a temp dir so Load does not pick up a real
// config.toml from the working tree
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "orderwatch", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8090", cfg.App.Port)
	assert.Equal(t, "orderwatch.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5*time.Minute, cfg.Sync.PollInterval)
	assert.Equal(t, 72*time.Hour, cfg.Sync.LookbackWindow)
	assert.Equal(t, 24*time.Hour, cfg.Sync.MaxChunkSpan)
	assert.Equal(t, 3, cfg.Sync.RetryMaxAttempts)
	assert.Equal(t, []time.Duration{time.Second, 3 * time.Second, 10 * time.Second}, cfg.Sync.RetryBackoff)
	assert.Equal(t, "notify-send", cfg.Notification.DesktopCommand)
	assert.Equal(t, 10, cfg.Notification.WebhookTimeoutSeconds)
}

func TestLoad_FromTOMLFile(t *testing.T) {
	dir := chdirTemp(t)

	toml := `
[app]
name = "orderwatch-test"
port = "9000"

[sync]
poll_interval = "90s"
lookback_window = "48h"
max_chunk_span = "12h"
retry_max_attempts = 5
retry_backoff = ["500ms", "2s"]

[notification]
webhook_enabled = true
webhook_url = "https://hooks.example.com/orders"
webhook_color = "#ff0000"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "orderwatch-test", cfg.App.Name)
	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, 90*time.Second, cfg.Sync.PollInterval)
	assert.Equal(t, 48*time.Hour, cfg.Sync.LookbackWindow)
	assert.Equal(t, 12*time.Hour, cfg.Sync.MaxChunkSpan)
	assert.Equal(t, 5, cfg.Sync.RetryMaxAttempts)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 2 * time.Second}, cfg.Sync.RetryBackoff)
	assert.True(t, cfg.Notification.WebhookEnabled)
	assert.Equal(t, "https://hooks.example.com/orders", cfg.Notification.WebhookURL)
	assert.Equal(t, "#ff0000", cfg.Notification.WebhookColor)
}

func TestLoad_EnvOverride(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ORDERWATCH_APP_PORT", "7777")
	t.Setenv("ORDERWATCH_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7777", cfg.App.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_WebhookEnabledRequiresURL(t *testing.T) {
	dir := chdirTemp(t)
	toml := `
[notification]
webhook_enabled = true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ProductionRequiresCredentials(t *testing.T) {
	dir := chdirTemp(t)
	toml := `
[app]
env = "production"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsTinyPollInterval(t *testing.T) {
	dir := chdirTemp(t)
	toml := `
[sync]
poll_interval = "100ms"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestParseDurations_SkipsBadEntries(t *testing.T) {
	got := parseDurations([]string{"1s", "bogus", "250ms"})
	assert.Equal(t, []time.Duration{time.Second, 250 * time.Millisecond}, got)
}
