// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Config is the environment layer. Empty fields fall through to ~/.motionline/config.yaml
// and then to the defaults below.
type Config struct {
	Dir          string        `env:"MOTIONLINE_DIR"`
	Format       string        `env:"MOTIONLINE_FORMAT"`
	LogLevel     string        `env:"MOTIONLINE_LOG_LEVEL"`
	LogFormat    string        `env:"MOTIONLINE_LOG_FORMAT"`
	RedisURL     string        `env:"MOTIONLINE_REDIS_URL"`
	SyncDebounce time.Duration `env:"MOTIONLINE_SYNC_DEBOUNCE"`
	Glyphs       string        `env:"MOTIONLINE_TUI_GLYPHS"`
	ConfigDir    string        `env:"MOTIONLINE_CONFIG_DIR"`
}

const (
	DefaultFormat       = "json"
	DefaultLogLevel     = "warn"
	DefaultLogFormat    = "console"
	DefaultSyncDebounce = 2 * time.Second
)

// Load reads an optional .env file from the working directory, then the environment.
func Load(dotenvFiles ...string) (Config, error) {
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	return cfg, nil
}

// WithDefaults fills every still-empty field.
func (c Config) WithDefaults() Config {
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.SyncDebounce <= 0 {
		c.SyncDebounce = DefaultSyncDebounce
	}
	return c
}

func (c Config) Validate() error {
	switch c.Format {
	case "", "json", "edn", "yaml":
	default:
		return fmt.Errorf("unsupported format %q (expected json|edn|yaml)", c.Format)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "console", "json":
	default:
		return fmt.Errorf("unsupported log format %q (expected console|json)", c.LogFormat)
	}
	return nil
}
