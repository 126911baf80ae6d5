package storage

import (
	"context"
	"slices"
	"time"

	"go.etcd.io/bbolt"

	"github.com/dmitrijs2005/loadlog/internal/boltx"
	"github.com/dmitrijs2005/loadlog/internal/filex"
	"github.com/dmitrijs2005/loadlog/internal/logging"
	"github.com/dmitrijs2005/loadlog/internal/repositories/metadata"
	"github.com/dmitrijs2005/loadlog/internal/repositories/records"
	"github.com/dmitrijs2005/loadlog/internal/repositories/settings"
)

// boltOpenTimeout bounds the wait for the file lock held by another process.
const boltOpenTimeout = 2 * time.Second

type BoltEngine struct {
	db    *bbolt.DB
	log   logging.Logger
	repos *Repositories
}

func boltRepos(r boltx.Runner, log logging.Logger) *Repositories {
	return &Repositories{
		Metadata: metadata.NewBoltRepository(r),
		Records:  records.NewBoltRepository(r, records.WithLogger(log)),
		Settings: settings.NewBoltRepository(r),
	}
}

func OpenBolt(path string, opts ...Option) (*BoltEngine, error) {
	o := buildOptions(opts)

	if _, err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}

	buckets := slices.Concat(metadata.BoltBuckets, records.BoltBuckets, settings.BoltBuckets)
	db, err := boltx.Open(path, boltOpenTimeout, buckets...)
	if err != nil {
		return nil, err
	}

	log := o.log.With("engine", EngineBolt)
	return &BoltEngine{db: db, log: log, repos: boltRepos(db, log)}, nil
}

func (e *BoltEngine) Repos() *Repositories { return e.repos }

// DB exposes the underlying handle.
func (e *BoltEngine) DB() *bbolt.DB { return e.db }

func (e *BoltEngine) WithinTx(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.db.Update(func(tx *bbolt.Tx) error {
		return fn(ctx, boltRepos(boltx.InTx(tx), e.log))
	})
}

func (e *BoltEngine) Close() error {
	return e.db.Close()
}
