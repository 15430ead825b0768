package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jwulff/inventory-go/internal/domain"
	"github.com/jwulff/inventory-go/internal/storage"
)

// timeFormat is how last_edited is persisted.
const timeFormat = time.RFC3339Nano

// Store is a SQLite implementation of storage.Store.
type Store struct {
	pool *Pool
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to stamp last_edited and to default
// unreadable timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a store on top of pool.
func NewStore(pool *Pool, opts ...Option) *Store {
	s := &Store{pool: pool, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewMemoryStore creates an in-memory SQLite store.
func NewMemoryStore(opts ...Option) (*Store, error) {
	pool, err := NewMemoryPool()
	if err != nil {
		return nil, err
	}
	return NewStore(pool, opts...), nil
}

// NewFileStore creates a file-based SQLite store with default pool settings.
func NewFileStore(path string, opts ...Option) (*Store, error) {
	pool, err := NewFilePool(path)
	if err != nil {
		return nil, err
	}
	return NewStore(pool, opts...), nil
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *Pool {
	return s.pool
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// AddIngredient inserts the ingredient or replaces the existing row with the
// same name, stamping last_edited with the current UTC time.
func (s *Store) AddIngredient(ctx context.Context, name string, quantity uint32, unit string) error {
	conn, release, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	editedAt := s.now().UTC().Format(timeFormat)
	_, err = conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO ingredients (name, quantity, unit, last_edited)
		VALUES (?, ?, ?, ?)
	`, name, int64(quantity), unit, editedAt)
	return storage.NewError("add ingredient", storage.ErrQuery, err)
}

// GetIngredient looks up one ingredient by exact name.
func (s *Store) GetIngredient(ctx context.Context, name string) (*domain.Ingredient, error) {
	conn, release, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var r row
	err = conn.QueryRowContext(ctx, `
		SELECT name, quantity, unit, last_edited FROM ingredients WHERE name = ?
	`, name).Scan(&r.name, &r.quantity, &r.unit, &r.editedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound{Resource: "ingredient", ID: name}
	}
	if err != nil {
		return nil, storage.NewError("get ingredient", storage.ErrQuery, err)
	}
	return s.toIngredient(r), nil
}

// ListIngredients returns every stored ingredient in no particular order.
// An empty table yields an empty, non-nil slice.
func (s *Store) ListIngredients(ctx context.Context) ([]domain.Ingredient, error) {
	conn, release, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := conn.QueryContext(ctx, `
		SELECT name, quantity, unit, last_edited FROM ingredients
	`)
	if err != nil {
		return nil, storage.NewError("list ingredients", storage.ErrQuery, err)
	}
	defer rows.Close()

	ingredients := []domain.Ingredient{}
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.name, &r.quantity, &r.unit, &r.editedAt); err != nil {
			return nil, storage.NewError("list ingredients", storage.ErrQuery, err)
		}
		ingredients = append(ingredients, *s.toIngredient(r))
	}
	if err := rows.Err(); err != nil {
		return nil, storage.NewError("list ingredients", storage.ErrQuery, err)
	}
	return ingredients, nil
}

// DeleteIngredient removes the ingredient with the given name. Deleting a
// name that is not stored returns storage.ErrNotFound.
func (s *Store) DeleteIngredient(ctx context.Context, name string) error {
	conn, release, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	res, err := conn.ExecContext(ctx, "DELETE FROM ingredients WHERE name = ?", name)
	if err != nil {
		return storage.NewError("delete ingredient", storage.ErrQuery, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storage.NewError("delete ingredient", storage.ErrQuery, err)
	}
	if n == 0 {
		return storage.ErrNotFound{Resource: "ingredient", ID: name}
	}
	return nil
}

// row is an ingredients row as stored.
type row struct {
	name     string
	quantity uint32
	unit     string
	editedAt string
}

func (s *Store) toIngredient(r row) *domain.Ingredient {
	return domain.NewIngredient(r.name, r.quantity, r.unit, s.parseEditedAt(r.editedAt))
}

// parseEditedAt decodes a stored timestamp. Unreadable values become "now"
// so one bad row does not fail a whole listing.
func (s *Store) parseEditedAt(value string) time.Time {
	t, err := time.Parse(timeFormat, value)
	if err != nil {
		return s.now().UTC()
	}
	return t.UTC()
}

// Verify interface compliance
var _ storage.Store = (*Store)(nil)
