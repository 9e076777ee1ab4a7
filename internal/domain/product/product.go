package product

import "context"

// Product represents a catalog item that order lines may reference.
type Product struct {
	ID   string
	Name string
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	// ExistingIDs reports which of the given product IDs exist in the
	// catalog. It must be a single batched lookup.
	ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
}
