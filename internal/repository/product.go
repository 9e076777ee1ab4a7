package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jitterlabs/order-api/internal/domain/product"
)

const (
	listProductsSQL = `SELECT id, name FROM products ORDER BY id`

	existingProductIDsSQL = `SELECT id FROM products WHERE id = ANY($1)`

	insertProductSQL = `INSERT INTO products (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns the full catalog ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (product.Product, error) {
		var p product.Product
		err := row.Scan(&p.ID, &p.Name)
		return p, err
	})
}

// ExistingIDs reports which of the given IDs exist, in a single query.
func (r *ProductRepository) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	rows, err := r.pool.Query(ctx, existingProductIDsSQL, ids)
	if err != nil {
		return nil, errors.Wrap(err, "query product ids")
	}
	found, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (string, error) {
		var id string
		err := row.Scan(&id)
		return id, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "collect product ids")
	}

	out := make(map[string]struct{}, len(found))
	for _, id := range found {
		out[id] = struct{}{}
	}
	return out, nil
}

// Upsert inserts or renames a catalog product. Used by the seeder.
func (r *ProductRepository) Upsert(ctx context.Context, p product.Product) error {
	if _, err := r.pool.Exec(ctx, insertProductSQL, p.ID, p.Name); err != nil {
		return errors.Wrapf(err, "upsert product %q", p.ID)
	}
	return nil
}
