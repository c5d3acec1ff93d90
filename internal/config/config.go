// Package config loads service configuration from the environment.
//
// A local .env file is honoured when present (development convenience);
// real environments set the variables directly.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	defaultPort   = 8080
	defaultDBPath = "data/sleep.db"
)

type Config struct {
	Port     int
	DBPath   string
	LogLevel slog.Level
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
//
// Recognised variables:
//
//	PORT      — HTTP listen port (default 8080)
//	DB_PATH   — SQLite database file (default data/sleep.db)
//	LOG_LEVEL — debug | info | warn | error (default info)
func Load() (Config, error) {
	// Missing .env is fine; only an unreadable one matters, and even then
	// the environment itself may be fully set, so we don't fail.
	_ = godotenv.Load()

	cfg := Config{
		Port:     defaultPort,
		DBPath:   defaultDBPath,
		LogLevel: slog.LevelInfo,
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL %q: %w", v, err)
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}
