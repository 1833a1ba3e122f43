package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings shared by the CLI, the console, and the
// MCP server. Everything comes from the environment; flags only override
// per-invocation details like file paths.
type Config struct {
	Environment string        `env:"TRAILSTATE_ENV" envDefault:"development"`
	LogLevel    slog.Level    `env:"LOG_LEVEL" envDefault:"info"`
	RedisURL    string        `env:"REDIS_URL"`
	DataDir     string        `env:"DATA_DIR" envDefault:"./data"`
	SessionTTL  time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether the process runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
