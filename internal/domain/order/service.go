package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/jitterlabs/order-api/internal/domain/product"
)

// Service owns the order lifecycle: creation, retrieval, full item-set
// replacement and deletion, with code uniqueness and catalog validation.
type Service struct {
	products product.Repository
	orders   Repository
}

// NewService creates an order Service with the required dependencies.
func NewService(products product.Repository, orders Repository) *Service {
	return &Service{
		products: products,
		orders:   orders,
	}
}

// Create validates and persists a new order owned by userID.
//
// The code uniqueness check is global, not scoped to the caller. The database
// unique index remains the backstop for two concurrent creates racing past
// this check; the repository surfaces that as a CodeExistsError too.
func (s *Service) Create(ctx context.Context, sub Submission, userID string) (*Order, error) {
	_, err := s.orders.FindByCode(ctx, sub.Code)
	switch {
	case err == nil:
		return nil, &CodeExistsError{Code: sub.Code}
	case !errors.Is(err, ErrNotFound):
		return nil, errors.Wrap(err, "check order code")
	}

	lines, err := consolidate(sub.Items)
	if err != nil {
		return nil, err
	}
	if err := s.validateProducts(ctx, lines); err != nil {
		return nil, err
	}

	o := &Order{
		ID:           uuid.NewString(),
		Code:         sub.Code,
		Total:        sub.Total,
		CreationDate: sub.CreationDate,
		UserID:       userID,
		Items:        buildItems(lines),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// Get returns the order with the given code if it belongs to userID. A code
// owned by another user yields the same NotFoundError as a missing one.
func (s *Service) Get(ctx context.Context, code, userID string) (*Order, error) {
	o, err := s.orders.FindByCodeAndUser(ctx, code, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Code: code}
		}
		return nil, errors.Wrap(err, "find order")
	}
	return o, nil
}

// List returns every order owned by userID, most recently created first. An
// empty result is valid.
func (s *Service) List(ctx context.Context, userID string) ([]Order, error) {
	out, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return out, nil
}

// Update replaces the order's item set with the consolidated patch items and
// overwrites code, total and creation date where the patch provides them.
func (s *Service) Update(ctx context.Context, code string, patch Patch, userID string) (*Order, error) {
	o, err := s.Get(ctx, code, userID)
	if err != nil {
		return nil, err
	}

	lines, err := consolidate(patch.Items)
	if err != nil {
		return nil, err
	}
	if err := s.validateProducts(ctx, lines); err != nil {
		return nil, err
	}

	if patch.Code != "" {
		o.Code = patch.Code
	}
	if patch.Total != nil {
		o.Total = *patch.Total
	}
	if patch.CreationDate != nil {
		o.CreationDate = *patch.CreationDate
	}
	o.Items = buildItems(lines)

	if err := s.orders.Replace(ctx, o); err != nil {
		return nil, errors.Wrap(err, "replace order")
	}
	return o, nil
}

// Remove deletes the order and its items and returns a confirmation message.
func (s *Service) Remove(ctx context.Context, code, userID string) (string, error) {
	o, err := s.Get(ctx, code, userID)
	if err != nil {
		return "", err
	}
	if err := s.orders.Delete(ctx, o.ID); err != nil {
		return "", errors.Wrap(err, "delete order")
	}
	return fmt.Sprintf("order %s deleted successfully", code), nil
}

// validateProducts checks every consolidated line against the catalog in one
// batched lookup and reports the missing IDs in submission order.
func (s *Service) validateProducts(ctx context.Context, lines []LineItem) error {
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}

	existing, err := s.products.ExistingIDs(ctx, ids)
	if err != nil {
		return errors.Wrap(err, "check products")
	}

	var missing []string
	for _, id := range ids {
		if _, ok := existing[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return &ProductsNotFoundError{IDs: missing}
	}
	return nil
}

func buildItems(lines []LineItem) []Item {
	items := make([]Item, len(lines))
	for i, l := range lines {
		items[i] = Item{
			ID:        uuid.NewString(),
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.Price,
		}
	}
	return items
}
