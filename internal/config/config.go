package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrNoChat is returned when a Telegram token is set without a chat to talk to.
var ErrNoChat = errors.New("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")

// Config keeps runtime settings for the app.
type Config struct {
	DatabasePath   string
	LogLevel       slog.Level
	LogFile        string
	Location       *time.Location
	StatusAddr     string
	ReportTime     string
	TelegramToken  string
	TelegramChatID int64
	NATSURL        string
	NATSSubject    string
}

// TelegramEnabled reports whether the Telegram companion should run.
func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is applied first; real environment
// variables win over it.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// DefaultReportTime is used when a delivery channel is configured without
// POMOTARO_REPORT_TIME.
const DefaultReportTime = "21:00"

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	cfg := Config{
		DatabasePath:  get("POMOTARO_DB"),
		LogFile:       get("POMOTARO_LOG_FILE"),
		StatusAddr:    get("POMOTARO_STATUS_ADDR"),
		ReportTime:    get("POMOTARO_REPORT_TIME"),
		TelegramToken: get("TELEGRAM_TOKEN"),
		NATSURL:       get("POMOTARO_NATS_URL"),
		NATSSubject:   get("POMOTARO_NATS_SUBJECT"),
		Location:      time.Local,
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = defaultDatabasePath()
	}
	level, err := parseLevel(get("POMOTARO_LOG_LEVEL"))
	if err != nil {
		return cfg, err
	}
	cfg.LogLevel = level

	if tz := get("POMOTARO_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return cfg, fmt.Errorf("POMOTARO_TIMEZONE: %w", err)
		}
		cfg.Location = loc
	}

	if raw := get("TELEGRAM_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}
	if cfg.TelegramEnabled() && cfg.TelegramChatID == 0 {
		return cfg, ErrNoChat
	}

	// The daily report only has somewhere to go with Telegram or NATS.
	switch {
	case strings.EqualFold(cfg.ReportTime, "off"):
		cfg.ReportTime = ""
	case cfg.ReportTime == "" && (cfg.TelegramEnabled() || cfg.NATSURL != ""):
		cfg.ReportTime = DefaultReportTime
	}

	return cfg, nil
}

func parseLevel(raw string) (slog.Level, error) {
	if raw == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo, fmt.Errorf("POMOTARO_LOG_LEVEL: %w", err)
	}
	return level, nil
}

// defaultDatabasePath keeps the store in the user config directory, falling
// back to the working directory.
func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "pomotaro.db"
	}
	return filepath.Join(dir, "pomotaro", "pomotaro.db")
}
