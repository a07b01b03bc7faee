package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileRepository keeps the catalog as a JSON array in a single file.
type FileRepository struct {
	path string
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) Ping(_ context.Context) error {
	if _, err := os.Stat(r.path); err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return nil
}

func (r *FileRepository) Load(_ context.Context) ([]Product, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrCatalogUnavailable, r.path, err)
	}

	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrCatalogUnavailable, r.path, err)
	}
	return products, nil
}

// Save rewrites the whole document. Temp file plus rename, so an interrupted
// write never leaves a half-written catalog behind.
func (r *FileRepository) Save(_ context.Context, products []Product) error {
	raw, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersistence, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".products-*.json")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", ErrPersistence, tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("%w: rename %s: %v", ErrPersistence, r.path, err)
	}
	return nil
}
