package catalog

import (
	"context"
	"errors"
)

var (
	// ErrCatalogUnavailable means the backing store is missing or corrupt.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrPersistence means the backing store could not be rewritten.
	ErrPersistence = errors.New("catalog persistence failed")
)

// Repository is the backing-store contract: the whole collection is loaded
// once and rewritten in full on every change. A database backend implements
// the same contract so query logic never learns where products live.
type Repository interface {
	Load(ctx context.Context) ([]Product, error)
	Save(ctx context.Context, products []Product) error
	Ping(ctx context.Context) error
}
