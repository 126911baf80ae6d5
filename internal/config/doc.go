// Package config loads runtime configuration for the loadlog CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-d string   path to the journal database
//	-e string   storage engine: sqlite or bolt
//	-l int      auto-lock after this many idle minutes
//	-i int      auto-lock check interval (seconds)
//	-k int      PBKDF2 iterations for new accounts and passphrase changes
//	-v string   log level: debug, info, warn or error
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "5m" or
// integer nanoseconds. Keys that are absent keep their previous value:
//
//	{
//	  "database_path": "/home/me/.loadlog/journal.db",
//	  "storage_engine": "sqlite",
//	  "auto_lock_after": "5m",
//	  "auto_lock_check_interval": "15s",
//	  "kdf_iterations": 500000,
//	  "log_level": "info"
//	}
//
// The package does not read environment variables.
package config
