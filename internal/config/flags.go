package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/loadlog/internal/flagx"
)

var knownFlags = []string{"-d", "-e", "-l", "-i", "-k", "-v"}

// parseFlags populates cfg from command-line flags. Arguments other than the
// flags listed in the package doc are ignored, so -c can be shared with
// parseJson.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("loadlog", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the journal database")
	fs.StringVar(&cfg.StorageEngine, "e", cfg.StorageEngine, "storage engine (sqlite or bolt)")
	autoLock := fs.Int("l", int(cfg.AutoLockAfter.Minutes()), "auto-lock after idle minutes")
	checkInterval := fs.Int("i", int(cfg.AutoLockCheckInterval.Seconds()), "auto-lock check interval (in seconds)")
	fs.IntVar(&cfg.KDFIterations, "k", cfg.KDFIterations, "PBKDF2 iterations for new keys")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	// Sub-minute windows from JSON survive when -l is not given.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "l":
			cfg.AutoLockAfter = time.Duration(*autoLock) * time.Minute
		case "i":
			cfg.AutoLockCheckInterval = time.Duration(*checkInterval) * time.Second
		}
	})
	return nil
}
