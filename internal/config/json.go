package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/loadlog/internal/flagx"
	"github.com/dmitrijs2005/loadlog/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell an absent key from a zero value.
type JsonConfig struct {
	DatabasePath          *string         `json:"database_path"`
	StorageEngine         *string         `json:"storage_engine"`
	AutoLockAfter         *timex.Duration `json:"auto_lock_after"`
	AutoLockCheckInterval *timex.Duration `json:"auto_lock_check_interval"`
	KDFIterations         *int            `json:"kdf_iterations"`
	LogLevel              *string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c or -config. Without either
// flag it does nothing.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.StorageEngine != nil {
		cfg.StorageEngine = *jc.StorageEngine
	}
	if jc.AutoLockAfter != nil {
		cfg.AutoLockAfter = jc.AutoLockAfter.Duration
	}
	if jc.AutoLockCheckInterval != nil {
		cfg.AutoLockCheckInterval = jc.AutoLockCheckInterval.Duration
	}
	if jc.KDFIterations != nil {
		cfg.KDFIterations = *jc.KDFIterations
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	return nil
}
