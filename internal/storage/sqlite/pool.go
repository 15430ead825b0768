// Package sqlite provides a SQLite implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jwulff/inventory-go/internal/storage"

	_ "modernc.org/sqlite"
)

const memoryDSN = ":memory:"

// Pool defaults.
const (
	DefaultMaxConns       = 10
	DefaultAcquireTimeout = 30 * time.Second
	DefaultBusyTimeout    = 5 * time.Second
)

// PoolConfig configures a connection pool.
type PoolConfig struct {
	// Path is the database file, created if missing. ":memory:" selects an
	// in-memory database.
	Path string

	// MaxConns bounds the number of open connections. Zero means DefaultMaxConns.
	MaxConns int

	// AcquireTimeout bounds how long Acquire waits for a free connection.
	// Zero means DefaultAcquireTimeout; negative disables the bound.
	AcquireTimeout time.Duration

	// BusyTimeout is how long SQLite waits on a locked database before
	// failing a statement. Zero means DefaultBusyTimeout.
	BusyTimeout time.Duration
}

// Pool is a bounded set of reusable connections to one SQLite database.
type Pool struct {
	db             *sql.DB
	path           string
	acquireTimeout time.Duration
}

// NewMemoryPool creates a pool over a private in-memory database.
func NewMemoryPool() (*Pool, error) {
	return OpenPool(PoolConfig{Path: memoryDSN})
}

// NewFilePool creates a pool over the database file at path with defaults.
func NewFilePool(path string) (*Pool, error) {
	return OpenPool(PoolConfig{Path: path})
}

// OpenPool opens or creates the database, sizes the pool, and ensures the
// schema exists. Open failures match storage.ErrPoolInit and schema failures
// match storage.ErrSchema.
func OpenPool(cfg PoolConfig) (*Pool, error) {
	if cfg.Path == "" {
		return nil, storage.NewError("open pool", storage.ErrPoolInit, errors.New("empty database path"))
	}
	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = DefaultMaxConns
	}
	// Every connection to ":memory:" is its own database.
	if cfg.Path == memoryDSN {
		maxConns = 1
	}
	acquireTimeout := cfg.AcquireTimeout
	if acquireTimeout == 0 {
		acquireTimeout = DefaultAcquireTimeout
	}
	busyTimeout := cfg.BusyTimeout
	if busyTimeout <= 0 {
		busyTimeout = DefaultBusyTimeout
	}

	db, err := sql.Open("sqlite", buildDSN(cfg.Path, busyTimeout))
	if err != nil {
		return nil, storage.NewError("open pool", storage.ErrPoolInit, fmt.Errorf("failed to open database: %w", err))
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, storage.NewError("open pool", storage.ErrPoolInit, fmt.Errorf("failed to open %s: %w", cfg.Path, err))
	}

	pool := &Pool{db: db, path: cfg.Path, acquireTimeout: acquireTimeout}
	if err := pool.migrate(); err != nil {
		db.Close()
		return nil, storage.NewError("open pool", storage.ErrSchema, fmt.Errorf("failed to migrate: %w", err))
	}

	return pool, nil
}

// buildDSN attaches per-connection pragmas so every pooled connection gets
// them, appending to any query string already on path.
func buildDSN(path string, busyTimeout time.Duration) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	if path != memoryDSN {
		q.Add("_pragma", "journal_mode(WAL)")
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode()
}

func (p *Pool) migrate() error {
	_, err := p.db.Exec(schema)
	return err
}

// Acquire hands out one pooled connection. The returned release func puts it
// back and must be called on every path; calling it twice is harmless.
//
// A wait that outlasts the pool's acquire timeout fails with
// storage.ErrPoolExhausted; other failures match storage.ErrConnection.
func (p *Pool) Acquire(ctx context.Context) (*sql.Conn, func(), error) {
	waitCtx := ctx
	if p.acquireTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, p.acquireTimeout)
		defer cancel()
	}

	conn, err := p.db.Conn(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, nil, storage.NewError("acquire", storage.ErrPoolExhausted, err)
		}
		return nil, nil, storage.NewError("acquire", storage.ErrConnection, err)
	}

	var once sync.Once
	release := func() {
		once.Do(func() { _ = conn.Close() })
	}
	return conn, release, nil
}

// Path returns the database path the pool was opened with.
func (p *Pool) Path() string {
	return p.path
}

// Stats reports pool usage.
func (p *Pool) Stats() sql.DBStats {
	return p.db.Stats()
}

// Ping checks that a connection can be acquired and used.
func (p *Pool) Ping(ctx context.Context) error {
	conn, release, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return storage.NewError("ping", storage.ErrConnection, conn.PingContext(ctx))
}

// Close closes every connection in the pool.
func (p *Pool) Close() error {
	return p.db.Close()
}
