// Package storage provides storage abstractions for the inventory.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwulff/inventory-go/internal/domain"
)

// Store is the interface for persistent ingredient storage.
//
// There is a single write path: AddIngredient inserts or replaces the row
// keyed by name, so an update is an add with an existing name.
type Store interface {
	AddIngredient(ctx context.Context, name string, quantity uint32, unit string) error
	GetIngredient(ctx context.Context, name string) (*domain.Ingredient, error)
	ListIngredients(ctx context.Context) ([]domain.Ingredient, error)
	DeleteIngredient(ctx context.Context, name string) error

	// Lifecycle
	Close() error
}

// Error kinds. Match them with errors.Is.
var (
	ErrPoolInit      = errors.New("database pool init failed")
	ErrSchema        = errors.New("database schema setup failed")
	ErrConnection    = errors.New("database connection unavailable")
	ErrPoolExhausted = fmt.Errorf("%w: pool exhausted", ErrConnection)
	ErrQuery         = errors.New("database query failed")
)

// Error is a storage failure tagged with its kind and the operation that
// produced it.
type Error struct {
	Op   string
	Kind error
	Err  error
}

// NewError wraps err with the given kind. A nil err yields nil.
func NewError(op string, kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

// Unwrap exposes both the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// ErrNotFound is returned when a record is not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e ErrNotFound) Error() string {
	return e.Resource + " not found: " + e.ID
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}
