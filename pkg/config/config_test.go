package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cleanenv.ReadEnv(cfg))

	assert.Equal(t, "dreamclockd", cfg.App.Name)
	assert.False(t, cfg.App.Autostart)
	assert.Equal(t, time.Second, cfg.Scheduler.TickInterval)
	assert.Equal(t, 15*time.Second, cfg.Notifier.CheckInterval)
	assert.Equal(t, 2*time.Minute, cfg.Notifier.ReminderInterval)
	assert.Equal(t, 10, cfg.Notifier.MaxReminders)
	assert.Equal(t, int64(52428800), cfg.Audio.QuotaBytes)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestReadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  name: testclock
  autostart: true
scheduler:
  tick_interval: 2s
notifier:
  check_interval: 30s
  reminder_interval: 5m
  max_reminders: 3
audio:
  quota_bytes: 1024
logger:
  log_level: debug
  log_format: json
`), 0o644))

	cfg := &Config{}
	require.NoError(t, cleanenv.ReadConfig(path, cfg))

	assert.Equal(t, "testclock", cfg.App.Name)
	assert.True(t, cfg.App.Autostart)
	assert.Equal(t, 2*time.Second, cfg.Scheduler.TickInterval)
	assert.Equal(t, 30*time.Second, cfg.Notifier.CheckInterval)
	assert.Equal(t, 5*time.Minute, cfg.Notifier.ReminderInterval)
	assert.Equal(t, 3, cfg.Notifier.MaxReminders)
	assert.Equal(t, int64(1024), cfg.Audio.QuotaBytes)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("AUDIO_QUOTA_BYTES", "2048")

	cfg := &Config{}
	require.NoError(t, cleanenv.ReadEnv(cfg))

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, int64(2048), cfg.Audio.QuotaBytes)
}
