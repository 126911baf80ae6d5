package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/loadlog/internal/dbx"
	"github.com/dmitrijs2005/loadlog/internal/filex"
	"github.com/dmitrijs2005/loadlog/internal/repositories/metadata"
	"github.com/dmitrijs2005/loadlog/internal/repositories/records"
	"github.com/dmitrijs2005/loadlog/internal/repositories/settings"
	"github.com/dmitrijs2005/loadlog/internal/storage/migrations"
)

type SQLiteEngine struct {
	db    *sql.DB
	repos *Repositories
}

func sqliteRepos(db dbx.DBTX) *Repositories {
	return &Repositories{
		Metadata: metadata.NewSQLiteRepository(db),
		Records:  records.NewSQLiteRepository(db),
		Settings: settings.NewSQLiteRepository(db),
	}
}

// OpenSQLite opens the database file at dsn, creating its directory if needed,
// and brings the schema up to date.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteEngine, error) {
	if _, err := filex.EnsureParentDir(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return NewSQLiteEngine(db), nil
}

// NewSQLiteEngine wraps an already migrated database. It limits the pool to
// a single connection so that SQLite write locks are never contended.
func NewSQLiteEngine(db *sql.DB) *SQLiteEngine {
	db.SetMaxOpenConns(1)
	return &SQLiteEngine{db: db, repos: sqliteRepos(db)}
}

func (e *SQLiteEngine) Repos() *Repositories { return e.repos }

// DB exposes the underlying handle.
func (e *SQLiteEngine) DB() *sql.DB { return e.db }

func (e *SQLiteEngine) WithinTx(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error {
	return dbx.WithTx(ctx, e.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, sqliteRepos(tx))
	})
}

func (e *SQLiteEngine) Close() error {
	return e.db.Close()
}
