package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "loadlog.db", c.DatabasePath)
	assert.Equal(t, "sqlite", c.StorageEngine)
	assert.Equal(t, 5*time.Minute, c.AutoLockAfter)
	assert.Equal(t, 15*time.Second, c.AutoLockCheckInterval)
	assert.Equal(t, 500_000, c.KDFIterations)
	assert.Equal(t, "info", c.LogLevel)
	require.NoError(t, c.Validate())
}

func TestLoad_NoArgsGivesDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, cfg)
}

func TestLoad_JSONThenFlags(t *testing.T) {
	path := writeTempJSON(t, t.TempDir(), "", map[string]any{
		"database_path":   "/tmp/from-json.db",
		"storage_engine":  "bolt",
		"auto_lock_after": "90s",
		"log_level":       "debug",
	})

	cfg, err := Load([]string{"-c", path, "-d", "/tmp/from-flag.db", "-k", "1000"})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/from-flag.db", cfg.DatabasePath)
	assert.Equal(t, "bolt", cfg.StorageEngine)
	assert.Equal(t, 90*time.Second, cfg.AutoLockAfter)
	assert.Equal(t, 15*time.Second, cfg.AutoLockCheckInterval)
	assert.Equal(t, 1000, cfg.KDFIterations)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown engine", func(c *Config) { c.StorageEngine = "postgres" }},
		{"empty path", func(c *Config) { c.DatabasePath = "" }},
		{"zero window", func(c *Config) { c.AutoLockAfter = 0 }},
		{"zero interval", func(c *Config) { c.AutoLockCheckInterval = 0 }},
		{"interval above window", func(c *Config) { c.AutoLockCheckInterval = time.Hour }},
		{"zero iterations", func(c *Config) { c.KDFIterations = 0 }},
		{"unknown level", func(c *Config) { c.LogLevel = "chatty" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			require.ErrorIs(t, c.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoad_InvalidResult(t *testing.T) {
	_, err := Load([]string{"-e", "mysql"})
	require.ErrorIs(t, err, ErrInvalidConfig)
}
