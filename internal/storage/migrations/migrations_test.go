package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n))
	return n > 0
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUp_CreatesSchema(t *testing.T) {
	db := openDB(t)
	require.NoError(t, Up(context.Background(), db))

	for _, name := range []string{"goose_db_version", "metadata", "events", "settings"} {
		require.True(t, tableExists(t, db, name), name)
	}
}

func TestUp_Idempotent(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	require.NoError(t, Up(ctx, db))
	_, err := db.Exec(`INSERT INTO metadata(key, value) VALUES ('k', 'v')`)
	require.NoError(t, err)

	require.NoError(t, Up(ctx, db))

	var v string
	require.NoError(t, db.QueryRow(`SELECT value FROM metadata WHERE key = 'k'`).Scan(&v))
	require.Equal(t, "v", v)
}
