package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jwulff/inventory-go/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemoryPool(t *testing.T) {
	pool, err := NewMemoryPool()
	require.NoError(t, err)
	defer pool.Close()

	assert.Equal(t, 1, pool.Stats().MaxOpenConnections)
	assert.NoError(t, pool.Ping(context.Background()))
}

func TestNewFilePool(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.db")
	pool, err := NewFilePool(path)
	require.NoError(t, err)
	defer pool.Close()

	assert.Equal(t, path, pool.Path())
	assert.Equal(t, DefaultMaxConns, pool.Stats().MaxOpenConnections)
}

func TestOpenPoolSchemaIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.db")

	first, err := NewFilePool(path)
	require.NoError(t, err)
	store := NewStore(first)
	require.NoError(t, store.AddIngredient(context.Background(), "flour", 10, "kg"))
	require.NoError(t, first.Close())

	second, err := NewFilePool(path)
	require.NoError(t, err)
	defer second.Close()

	ingredients, err := NewStore(second).ListIngredients(context.Background())
	require.NoError(t, err)
	assert.Len(t, ingredients, 1)
}

func TestOpenPoolEmptyPath(t *testing.T) {
	_, err := OpenPool(PoolConfig{})
	assert.True(t, errors.Is(err, storage.ErrPoolInit))
}

func TestOpenPoolMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "inventory.db")

	_, err := NewFilePool(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrPoolInit))
	assert.False(t, errors.Is(err, storage.ErrSchema))
}

func TestOpenPoolSchemaConflict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE other (x TEXT); CREATE INDEX ingredients ON other (x);`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = NewFilePool(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrSchema))
}

func TestAcquireRelease(t *testing.T) {
	pool, err := OpenPool(PoolConfig{Path: filepath.Join(t.TempDir(), "inventory.db"), MaxConns: 2})
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()
	conn, release, err := pool.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pool.Stats().InUse)

	require.NoError(t, conn.PingContext(ctx))
	release()
	release()

	assert.Equal(t, 0, pool.Stats().InUse)
}

func TestAcquirePoolExhausted(t *testing.T) {
	pool, err := OpenPool(PoolConfig{
		Path:           filepath.Join(t.TempDir(), "inventory.db"),
		MaxConns:       1,
		AcquireTimeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()
	_, release, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer release()

	_, _, err = pool.Acquire(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrPoolExhausted))
	assert.True(t, errors.Is(err, storage.ErrConnection))
}

func TestAcquireCallerCanceled(t *testing.T) {
	pool, err := NewMemoryPool()
	require.NoError(t, err)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = pool.Acquire(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrConnection))
	assert.False(t, errors.Is(err, storage.ErrPoolExhausted))
}

func TestAcquireAfterClose(t *testing.T) {
	pool, err := NewMemoryPool()
	require.NoError(t, err)
	require.NoError(t, pool.Close())

	_, _, err = pool.Acquire(context.Background())
	assert.True(t, errors.Is(err, storage.ErrConnection))
}

func TestBuildDSN(t *testing.T) {
	assert.Equal(t, ":memory:?_pragma=busy_timeout%285000%29", buildDSN(":memory:", 5*time.Second))
	assert.Equal(t,
		"inv.db?_pragma=busy_timeout%281000%29&_pragma=journal_mode%28WAL%29",
		buildDSN("inv.db", time.Second))
	assert.Equal(t,
		"file:inv.db?mode=rwc&_pragma=busy_timeout%281000%29&_pragma=journal_mode%28WAL%29",
		buildDSN("file:inv.db?mode=rwc", time.Second))
}

func TestOpenPoolPathWithQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.db")

	pool, err := NewFilePool("file:" + path + "?mode=rwc")
	require.NoError(t, err)
	defer pool.Close()

	store := NewStore(pool)
	require.NoError(t, store.AddIngredient(context.Background(), "flour", 1, "kg"))

	reopened, err := NewFilePool(path)
	require.NoError(t, err)
	defer reopened.Close()

	ing, err := NewStore(reopened).GetIngredient(context.Background(), "flour")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), ing.Quantity)
}
