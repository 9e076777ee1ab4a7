package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for order validation and persistence.
var (
	ErrNotFound   = errors.New("order not found")
	ErrEmptyItems = errors.New("at least one item is required")
)

// CodeExistsError indicates the submitted order code is already taken,
// by any user.
type CodeExistsError struct {
	Code string
}

func (e *CodeExistsError) Error() string {
	return fmt.Sprintf("order code %s already exists", e.Code)
}

// NotFoundError indicates no order with the given code is visible to the
// caller. It deliberately does not distinguish "does not exist" from
// "belongs to someone else".
type NotFoundError struct {
	Code string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order %s not found", e.Code)
}

// ProductsNotFoundError indicates one or more referenced products are not in
// the catalog. IDs keeps submission order.
type ProductsNotFoundError struct {
	IDs []string
}

func (e *ProductsNotFoundError) Error() string {
	return fmt.Sprintf("product(s) not found: %s", strings.Join(e.IDs, ", "))
}

// InvalidQuantityError indicates a line item has a quantity below 1.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1 for product %s", e.ProductID)
}

// PriceMismatchError indicates repeated references to the same product within
// one submission carry different unit prices, so they cannot be merged.
type PriceMismatchError struct {
	ProductID string
}

func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("conflicting unit prices for product %s", e.ProductID)
}

// Order aggregates line items under a caller-supplied, globally unique code.
type Order struct {
	ID           string
	Code         string
	Total        decimal.Decimal
	CreationDate time.Time
	UserID       string
	Items        []Item
}

// Item is one stored line of an order.
type Item struct {
	ID        string
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// LineItem is one submitted line, before consolidation.
type LineItem struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// Submission is the input for creating an order. Total is stored as given; it
// is not recomputed from the items.
type Submission struct {
	Code         string
	Total        decimal.Decimal
	CreationDate time.Time
	Items        []LineItem
}

// Patch is the input for updating an order. Nil or empty scalar fields keep
// the stored value; Items always replace the existing item set.
type Patch struct {
	Code         string
	Total        *decimal.Decimal
	CreationDate *time.Time
	Items        []LineItem
}

// Repository defines persistence operations for orders. Create, Replace and
// Delete must each be atomic: the order row and its items change together or
// not at all.
type Repository interface {
	// FindByCode looks an order up by code across all users. Returns
	// ErrNotFound when the code is free.
	FindByCode(ctx context.Context, code string) (*Order, error)
	// FindByCodeAndUser looks an order up by code, scoped to its owner.
	FindByCodeAndUser(ctx context.Context, code, userID string) (*Order, error)
	// ListByUser returns the user's orders with items, most recent
	// creation date first.
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	// Create persists the order and its items. A concurrent insert with
	// the same code surfaces as a CodeExistsError.
	Create(ctx context.Context, o *Order) error
	// Replace rewrites the order row and swaps its full item set, scoped by
	// the order's internal ID so a code rename cannot widen the delete.
	Replace(ctx context.Context, o *Order) error
	// Delete removes the order's items, then the order row.
	Delete(ctx context.Context, orderID string) error
}
