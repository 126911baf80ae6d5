package storage

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/dmitrijs2005/loadlog/internal/common"
	"github.com/dmitrijs2005/loadlog/internal/logging"
	"github.com/dmitrijs2005/loadlog/internal/models"
)

func forEachEngine(t *testing.T, fn func(t *testing.T, e Engine)) {
	for _, name := range []string{EngineSQLite, EngineBolt} {
		t.Run(name, func(t *testing.T) {
			e, err := Open(context.Background(), name, filepath.Join(t.TempDir(), "nested", "journal.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = e.Close() })
			fn(t, e)
		})
	}
}

func TestOpen_UnknownEngine(t *testing.T) {
	_, err := Open(context.Background(), "postgres", filepath.Join(t.TempDir(), "x"))
	require.ErrorContains(t, err, "unknown storage engine")
}

func TestWithinTx_Commits(t *testing.T) {
	forEachEngine(t, func(t *testing.T, e Engine) {
		ctx := context.Background()

		err := e.WithinTx(ctx, func(ctx context.Context, repos *Repositories) error {
			if err := repos.Metadata.Set(ctx, "load_log_auth_salt", "s"); err != nil {
				return err
			}
			if err := repos.Settings.Put(ctx, models.AppSettingsKey, models.DefaultAppSettings()); err != nil {
				return err
			}
			return repos.Records.Put(ctx, &models.Record{ID: "r", Date: 1, Data: "{}"})
		})
		require.NoError(t, err)

		v, err := e.Repos().Metadata.Get(ctx, "load_log_auth_salt")
		require.NoError(t, err)
		assert.Equal(t, "s", v)

		_, err = e.Repos().Records.Get(ctx, "r")
		require.NoError(t, err)
	})
}

func TestWithinTx_RollsBackEverything(t *testing.T) {
	forEachEngine(t, func(t *testing.T, e Engine) {
		ctx := context.Background()
		require.NoError(t, e.Repos().Metadata.Set(ctx, "load_log_auth_salt", "before"))
		require.NoError(t, e.Repos().Records.Put(ctx, &models.Record{ID: "keep", Date: 1, Data: "{}"}))

		boom := errors.New("boom")
		err := e.WithinTx(ctx, func(ctx context.Context, repos *Repositories) error {
			require.NoError(t, repos.Records.Clear(ctx))
			require.NoError(t, repos.Records.BulkPut(ctx, []models.Record{{ID: "new", Date: 2, Data: "{}"}}))
			require.NoError(t, repos.Metadata.Set(ctx, "load_log_auth_salt", "after"))
			return boom
		})
		require.ErrorIs(t, err, boom)

		v, err := e.Repos().Metadata.Get(ctx, "load_log_auth_salt")
		require.NoError(t, err)
		assert.Equal(t, "before", v)

		all, err := e.Repos().Records.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "keep", all[0].ID)

		_, err = e.Repos().Records.Get(ctx, "new")
		require.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestWithinTx_SeesOwnWrites(t *testing.T) {
	forEachEngine(t, func(t *testing.T, e Engine) {
		ctx := context.Background()
		err := e.WithinTx(ctx, func(ctx context.Context, repos *Repositories) error {
			require.NoError(t, repos.Records.Put(ctx, &models.Record{ID: "a", Date: 1, Data: "{}"}))
			got, err := repos.Records.Get(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, "a", got.ID)
			return nil
		})
		require.NoError(t, err)
	})
}

func TestReopen_PersistsData(t *testing.T) {
	for _, name := range []string{EngineSQLite, EngineBolt} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "journal.db")

			e, err := Open(ctx, name, path)
			require.NoError(t, err)
			require.NoError(t, e.Repos().Records.Put(ctx, &models.Record{ID: "x", Date: 9, Data: "Zg==", IV: "00", IsEncrypted: true}))
			require.NoError(t, e.Close())

			e, err = Open(ctx, name, path)
			require.NoError(t, err)
			defer e.Close()

			got, err := e.Repos().Records.Get(ctx, "x")
			require.NoError(t, err)
			assert.Equal(t, models.Record{ID: "x", Date: 9, Data: "Zg==", IV: "00", IsEncrypted: true}, *got)
		})
	}
}

func TestOpen_CreatesParentDirs(t *testing.T) {
	for _, name := range []string{EngineSQLite, EngineBolt} {
		t.Run(name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "a", "b")
			e, err := Open(context.Background(), name, filepath.Join(dir, "journal.db"))
			require.NoError(t, err)
			defer e.Close()

			info, err := os.Stat(dir)
			require.NoError(t, err)
			assert.True(t, info.IsDir())
		})
	}
}

func TestOpenBolt_LoggerReachesRecords(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	e, err := OpenBolt(filepath.Join(t.TempDir(), "journal.db"), WithLogger(logging.New(&logs, slog.LevelDebug)))
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Repos().Records.Put(ctx, &models.Record{ID: "ok", Date: 1, Data: "{}"}))
	require.NoError(t, e.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte("events")).Put([]byte("ok"), []byte("{not json"))
	}))

	all, err := e.Repos().Records.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Contains(t, logs.String(), "skipping unreadable record")
	assert.Contains(t, logs.String(), "engine=bolt")
}
