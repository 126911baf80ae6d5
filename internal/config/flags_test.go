package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-d", "j.db", "-e", "bolt", "-l", "10", "-i", "30", "-k", "2000", "-v", "warn"},
			expected: &Config{
				DatabasePath:          "j.db",
				StorageEngine:         "bolt",
				AutoLockAfter:         10 * time.Minute,
				AutoLockCheckInterval: 30 * time.Second,
				KDFIterations:         2000,
				LogLevel:              "warn",
			},
		},
		{
			name: "unknown flags are ignored",
			args: []string{"-x", "1", "-c", "conf.json", "-d=other.db"},
			expected: &Config{
				DatabasePath:          "other.db",
				StorageEngine:         "sqlite",
				AutoLockAfter:         5 * time.Minute,
				AutoLockCheckInterval: 15 * time.Second,
				KDFIterations:         500_000,
				LogLevel:              "info",
			},
		},
		{name: "incorrect check interval", args: []string{"-i", "abc"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.LoadDefaults()

			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

func TestParseFlags_KeepsSubMinuteWindowWithoutFlag(t *testing.T) {
	cfg := &Config{AutoLockAfter: 90 * time.Second, AutoLockCheckInterval: 1500 * time.Millisecond}

	require.NoError(t, parseFlags(cfg, nil))
	assert.Equal(t, 90*time.Second, cfg.AutoLockAfter)
	assert.Equal(t, 1500*time.Millisecond, cfg.AutoLockCheckInterval)
}
