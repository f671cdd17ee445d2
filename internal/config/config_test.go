package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envOf(nil))
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.DatabasePath)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.ReportTime, "no delivery channel, no daily report")
	assert.Equal(t, time.Local, cfg.Location)
	assert.False(t, cfg.TelegramEnabled())
}

func TestFromEnvValues(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"POMOTARO_DB":          " /tmp/p.db ",
		"POMOTARO_LOG_LEVEL":   "debug",
		"POMOTARO_TIMEZONE":    "UTC",
		"POMOTARO_STATUS_ADDR": "127.0.0.1:7878",
		"TELEGRAM_TOKEN":       "123:abc",
		"TELEGRAM_CHAT_ID":     "-100200",
		"POMOTARO_NATS_URL":    "nats://127.0.0.1:4222",
	}))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/p.db", cfg.DatabasePath)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, "127.0.0.1:7878", cfg.StatusAddr)
	assert.Equal(t, int64(-100200), cfg.TelegramChatID)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATSURL)
	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, DefaultReportTime, cfg.ReportTime)
}

func TestFromEnvReportTime(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{"POMOTARO_NATS_URL": "nats://127.0.0.1:4222"}))
	require.NoError(t, err)
	assert.Equal(t, DefaultReportTime, cfg.ReportTime)

	cfg, err = FromEnv(envOf(map[string]string{"POMOTARO_NATS_URL": "nats://127.0.0.1:4222", "POMOTARO_REPORT_TIME": "off"}))
	require.NoError(t, err)
	assert.Empty(t, cfg.ReportTime)

	cfg, err = FromEnv(envOf(map[string]string{"POMOTARO_REPORT_TIME": "07:30"}))
	require.NoError(t, err)
	assert.Equal(t, "07:30", cfg.ReportTime)
}

func TestFromEnvErrors(t *testing.T) {
	_, err := FromEnv(envOf(map[string]string{"TELEGRAM_TOKEN": "123:abc"}))
	require.ErrorIs(t, err, ErrNoChat)

	_, err = FromEnv(envOf(map[string]string{"POMOTARO_TIMEZONE": "Mars/Olympus"}))
	assert.Error(t, err)

	_, err = FromEnv(envOf(map[string]string{"POMOTARO_LOG_LEVEL": "loud"}))
	assert.Error(t, err)

	_, err = FromEnv(envOf(map[string]string{"TELEGRAM_CHAT_ID": "abc"}))
	assert.Error(t, err)
}
