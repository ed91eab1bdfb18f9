// Package config loads process configuration from the environment.
// CLI flags, when set, take precedence over these values.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime settings shared by the CLI and the HTTP server.
type Config struct {
	LogPath  string `env:"CLOGNI_LOG"       envDefault:"audit_log.jsonl.gz"`
	DBPath   string `env:"CLOGNI_DB"        envDefault:"audit_index.db"`
	HTTPAddr string `env:"CLOGNI_HTTP_ADDR" envDefault:":8095"`
	LogLevel string `env:"CLOGNI_LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in configuration, matching the envDefault
// values above. Callers fall back to it when Load fails.
func Default() Config {
	return Config{
		LogPath:  "audit_log.jsonl.gz",
		DBPath:   "audit_index.db",
		HTTPAddr: ":8095",
		LogLevel: "info",
	}
}
