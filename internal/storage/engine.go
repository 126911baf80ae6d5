// Package storage wires the repositories to a concrete database. Two engines
// are available: SQLite (the default, schema managed by goose) and bbolt.
// Both honour the same contract, including all-or-nothing WithinTx.
package storage

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/loadlog/internal/logging"
	"github.com/dmitrijs2005/loadlog/internal/repositories/metadata"
	"github.com/dmitrijs2005/loadlog/internal/repositories/records"
	"github.com/dmitrijs2005/loadlog/internal/repositories/settings"
)

const (
	EngineSQLite = "sqlite"
	EngineBolt   = "bolt"
)

type Repositories struct {
	Metadata metadata.Repository
	Records  records.Repository
	Settings settings.Repository
}

// Engine owns a database handle and the repositories bound to it.
type Engine interface {
	// Repos returns repositories that each run in their own transaction.
	Repos() *Repositories

	// WithinTx runs fn with repositories bound to a single transaction that
	// commits when fn returns nil. fn must only touch the repositories it is
	// given; the SQLite engine serialises connections, so reaching for
	// Repos() inside fn deadlocks.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error

	Close() error
}

type options struct {
	log logging.Logger
}

type Option func(*options)

// WithLogger sets the logger handed to repositories that report recoverable
// read problems.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) options {
	o := options{log: logging.Nop()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Open selects an engine by name and opens the database at path.
func Open(ctx context.Context, engine, path string, opts ...Option) (Engine, error) {
	switch engine {
	case EngineSQLite, "":
		e, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		return e, nil
	case EngineBolt:
		e, err := OpenBolt(path, opts...)
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown storage engine %q", engine)
	}
}
