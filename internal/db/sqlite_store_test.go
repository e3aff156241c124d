package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "tuneup.db")
	store, err := Open(path, "", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestGetPutDelete(t *testing.T) {
	store, _ := openTemp(t)
	ctx := context.Background()

	got, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Put(ctx, "a", []byte(`{"v":1}`)))
	require.NoError(t, store.Put(ctx, "a", []byte(`{"v":2}`)))
	require.NoError(t, store.Put(ctx, "b", []byte(`{}`)))
	got, err = store.Get(ctx, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(got))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, store.Delete(ctx, "a"))
	require.NoError(t, store.Delete(ctx, "a"))
	got, err = store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReopenKeepsData(t *testing.T) {
	store, path := openTemp(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "k", []byte("v")))
	require.NoError(t, store.Close())

	again, err := Open(path, "", nil)
	require.NoError(t, err)
	defer again.Close()
	got, err := again.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestMigrationsRunOnce(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0001_kv.sql"), []byte(`CREATE TABLE kv (key TEXT PRIMARY KEY, value BLOB NOT NULL, updated_at INTEGER NOT NULL);`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0002_seed.sql"), []byte(`INSERT INTO kv (key, value, updated_at) VALUES ('seed', 'x', 0);`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	conn, err := sql.Open("sqlite3", DSN(filepath.Join(dir, "m.db")))
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, RunMigrations(conn, dir))
	// a second run would fail on CREATE TABLE and the duplicate seed if replayed
	require.NoError(t, RunMigrations(conn, dir))

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestMissingDirFallsBackToEmbedded(t *testing.T) {
	files, err := loadMigrations(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "0001_kv.sql", files[0].name)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("", "", nil)
	assert.Error(t, err)
}
