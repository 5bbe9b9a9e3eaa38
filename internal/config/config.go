package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, read from ROOMSHARE_* environment variables.
type Config struct {
	Port     string `env:"ROOMSHARE_PORT" envDefault:"8080"`
	DBPath   string `env:"ROOMSHARE_DB_PATH" envDefault:"roomshare.db"`
	LogLevel string `env:"ROOMSHARE_LOG_LEVEL" envDefault:"info"`

	// An empty RedisAddr keeps change notifications in-process.
	RedisAddr     string `env:"ROOMSHARE_REDIS_ADDR"`
	RedisPassword string `env:"ROOMSHARE_REDIS_PASSWORD"`
	RedisDB       int    `env:"ROOMSHARE_REDIS_DB" envDefault:"0"`

	SessionTTL      time.Duration `env:"ROOMSHARE_SESSION_TTL" envDefault:"2160h"`
	RateLimitRPS    float64       `env:"ROOMSHARE_RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst  int           `env:"ROOMSHARE_RATE_LIMIT_BURST" envDefault:"10"`
	CleanupInterval time.Duration `env:"ROOMSHARE_CLEANUP_INTERVAL" envDefault:"1h"`

	// OriginPatterns lists hosts allowed to open cross-origin WebSockets.
	OriginPatterns []string `env:"ROOMSHARE_ORIGIN_PATTERNS" envSeparator:","`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("ROOMSHARE_PORT must not be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("ROOMSHARE_DB_PATH must not be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("ROOMSHARE_SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be positive (rps=%v burst=%d)", c.RateLimitRPS, c.RateLimitBurst)
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("ROOMSHARE_CLEANUP_INTERVAL must be positive, got %s", c.CleanupInterval)
	}
	return nil
}
