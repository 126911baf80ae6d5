package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/loadlog/internal/cryptox"
	"github.com/dmitrijs2005/loadlog/internal/storage"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds runtime settings for the loadlog CLI.
type Config struct {
	DatabasePath          string
	StorageEngine         string
	AutoLockAfter         time.Duration
	AutoLockCheckInterval time.Duration
	KDFIterations         int
	LogLevel              string
}

// LoadDefaults populates c with the production defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "loadlog.db"
	c.StorageEngine = storage.EngineSQLite
	c.AutoLockAfter = 5 * time.Minute
	c.AutoLockCheckInterval = 15 * time.Second
	c.KDFIterations = cryptox.DefaultIterations
	c.LogLevel = "info"
}

// Validate rejects values the rest of the program cannot work with.
func (c *Config) Validate() error {
	switch c.StorageEngine {
	case storage.EngineSQLite, storage.EngineBolt:
	default:
		return fmt.Errorf("%w: unknown storage engine %q", ErrInvalidConfig, c.StorageEngine)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: database path is empty", ErrInvalidConfig)
	}
	if c.AutoLockAfter <= 0 {
		return fmt.Errorf("%w: auto-lock window must be positive", ErrInvalidConfig)
	}
	if c.AutoLockCheckInterval <= 0 || c.AutoLockCheckInterval > c.AutoLockAfter {
		return fmt.Errorf("%w: auto-lock check interval must be positive and not exceed the window", ErrInvalidConfig)
	}
	if c.KDFIterations <= 0 {
		return fmt.Errorf("%w: kdf iterations must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// Load builds a Config from args (without the program name): defaults, then
// the JSON file named by -c/-config, then flags.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
