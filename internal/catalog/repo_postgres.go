package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// PostgresRepository implements the same whole-collection contract as the
// file backend: Load reads every row in catalog order, Save replaces the
// table in one transaction.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func OpenPostgres(ctx context.Context, url string) (*PostgresRepository, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Close() error { return r.db.Close() }

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return r.db.PingContext(ctx)
	})
}

func (r *PostgresRepository) Load(ctx context.Context) ([]Product, error) {
	var out []Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx, `
			SELECT id, name, brand, category, price, rating, description, image
			FROM products
			ORDER BY pos ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Product, 0, 64)
		for rows.Next() {
			var p Product
			if err := rows.Scan(&p.ID, &p.Name, &p.Brand, &p.Category,
				&p.Price, &p.Rating, &p.Description, &p.Image); err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return out, nil
}

// Save replaces the whole table so the backend keeps the file repository's
// rewrite semantics. The pos column preserves catalog order across reloads.
func (r *PostgresRepository) Save(ctx context.Context, products []Product) error {
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
			return err
		}

		for pos, p := range products {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO products (id, pos, name, brand, category, price, rating, description, image)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			`, p.ID, pos, p.Name, p.Brand, p.Category, p.Price, p.Rating, p.Description, p.Image)
			if err != nil {
				return err
			}
		}

		return tx.Commit()
	})

	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
