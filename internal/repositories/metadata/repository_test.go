package metadata

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/loadlog/internal/boltx"
	"github.com/dmitrijs2005/loadlog/internal/common"
	"github.com/dmitrijs2005/loadlog/internal/storage/migrations"
)

func setupSQLite(t *testing.T) Repository {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "meta.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db))
	return NewSQLiteRepository(db)
}

func setupBolt(t *testing.T) Repository {
	t.Helper()
	db, err := boltx.Open(filepath.Join(t.TempDir(), "meta.bolt"), time.Second, BoltBuckets...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewBoltRepository(db)
}

func forEachRepo(t *testing.T, fn func(t *testing.T, r Repository)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, setupSQLite(t)) })
	t.Run("bolt", func(t *testing.T) { fn(t, setupBolt(t)) })
}

func TestSetGet(t *testing.T) {
	forEachRepo(t, func(t *testing.T, r Repository) {
		ctx := context.Background()

		require.NoError(t, r.Set(ctx, "load_log_auth_salt", "00ff"))
		v, err := r.Get(ctx, "load_log_auth_salt")
		require.NoError(t, err)
		assert.Equal(t, "00ff", v)

		require.NoError(t, r.Set(ctx, "load_log_auth_salt", "abcd"))
		v, err = r.Get(ctx, "load_log_auth_salt")
		require.NoError(t, err)
		assert.Equal(t, "abcd", v, "set must upsert")
	})
}

func TestGet_Missing(t *testing.T) {
	forEachRepo(t, func(t *testing.T, r Repository) {
		_, err := r.Get(context.Background(), "nope")
		require.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestDeleteListClear(t *testing.T) {
	forEachRepo(t, func(t *testing.T, r Repository) {
		ctx := context.Background()
		require.NoError(t, r.Set(ctx, "a", "1"))
		require.NoError(t, r.Set(ctx, "b", "2"))
		require.NoError(t, r.Set(ctx, "c", "3"))

		require.NoError(t, r.Delete(ctx, "b"))
		require.NoError(t, r.Delete(ctx, "missing"), "deleting a missing key is not an error")

		all, err := r.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"a": "1", "c": "3"}, all)

		require.NoError(t, r.Clear(ctx))
		all, err = r.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestCancelledContext(t *testing.T) {
	forEachRepo(t, func(t *testing.T, r Repository) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.Error(t, r.Set(ctx, "k", "v"))
	})
}

func TestSQLite_DriverErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	boom := errors.New("disk I/O error")

	mock.ExpectQuery(`SELECT value FROM metadata`).WithArgs("k").WillReturnError(boom)
	_, err = r.Get(ctx, "k")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, common.ErrNotFound)

	mock.ExpectExec(`INSERT INTO metadata`).WithArgs("k", "v").WillReturnError(boom)
	require.ErrorContains(t, r.Set(ctx, "k", "v"), "failed to set metadata[k]")

	mock.ExpectQuery(`SELECT key, value FROM metadata`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).AddRow("a", "1").RowError(0, boom))
	_, err = r.List(ctx)
	require.ErrorIs(t, err, boom)

	require.NoError(t, mock.ExpectationsWereMet())
}
