package catalog

import (
	"context"
	"sync"
)

// MemoryRepository backs the catalog with a plain slice. Used by tests and
// the dev backend.
type MemoryRepository struct {
	mu       sync.RWMutex
	products []Product
}

func NewMemoryRepository(seed []Product) *MemoryRepository {
	r := &MemoryRepository{}
	r.products = append(r.products, seed...)
	return r
}

func (r *MemoryRepository) Ping(_ context.Context) error { return nil }

func (r *MemoryRepository) Load(_ context.Context) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

func (r *MemoryRepository) Save(_ context.Context, products []Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = make([]Product, len(products))
	copy(r.products, products)
	return nil
}
