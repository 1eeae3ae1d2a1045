package config

import (
	"os"
	"strings"
)

// Config keeps runtime settings for the server.
type Config struct {
	Port         string
	DatabasePath string
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	cfg := Config{
		Port:         strings.TrimSpace(os.Getenv("PORT")),
		DatabasePath: strings.TrimSpace(os.Getenv("DATABASE_PATH")),
	}
	if cfg.Port == "" {
		cfg.Port = "8008"
	}
	if !strings.HasPrefix(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "yarukoto.db"
	}
	return cfg
}
