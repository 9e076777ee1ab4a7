package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jitterlabs/order-api/internal/domain/order"
)

const (
	orderByCodeSQL = `SELECT id, code, total, creation_date, user_id
		FROM orders WHERE code = $1`

	orderByCodeAndUserSQL = `SELECT id, code, total, creation_date, user_id
		FROM orders WHERE code = $1 AND user_id = $2`

	ordersByUserSQL = `SELECT id, code, total, creation_date, user_id
		FROM orders WHERE user_id = $1 ORDER BY creation_date DESC`

	itemsByOrderSQL = `SELECT id, order_id, product_id, quantity, price
		FROM order_items WHERE order_id = $1 ORDER BY id`

	itemsByOrdersSQL = `SELECT id, order_id, product_id, quantity, price
		FROM order_items WHERE order_id = ANY($1) ORDER BY id`

	insertOrderSQL = `INSERT INTO orders (id, code, total, creation_date, user_id)
		VALUES ($1, $2, $3, $4, $5)`

	updateOrderSQL = `UPDATE orders SET code = $2, total = $3, creation_date = $4
		WHERE id = $1`

	insertItemSQL = `INSERT INTO order_items (id, order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4, $5)`

	deleteItemsSQL = `DELETE FROM order_items WHERE order_id = $1`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`
)

// Name of the unique index backing global order-code uniqueness. It is the
// final backstop for two concurrent creates racing past the service's check.
const orderCodeConstraint = "orders_code_key"

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. All
// mutations run inside a single transaction so the order row and its items
// never diverge.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// FindByCode looks up an order row by code across all users. Items are not
// loaded; this lookup exists for the create-time uniqueness check.
func (r *OrderRepository) FindByCode(ctx context.Context, code string) (*order.Order, error) {
	return r.findRow(ctx, orderByCodeSQL, code)
}

// FindByCodeAndUser returns the order with its items, scoped to the owner.
func (r *OrderRepository) FindByCodeAndUser(ctx context.Context, code, userID string) (*order.Order, error) {
	o, err := r.findRow(ctx, orderByCodeAndUserSQL, code, userID)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, itemsByOrderSQL, o.ID)
	if err != nil {
		return nil, errors.Wrap(err, "query order items")
	}
	items, err := pgx.CollectRows(rows, scanItem)
	if err != nil {
		return nil, errors.Wrap(err, "collect order items")
	}
	for _, it := range items {
		o.Items = append(o.Items, it.Item)
	}
	return o, nil
}

// ListByUser returns the user's orders, most recent creation date first, with
// all item sets fetched in one batched query.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, ordersByUserSQL, userID)
	if err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	out, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, errors.Wrap(err, "collect orders")
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, len(out))
	index := make(map[string]int, len(out))
	for i := range out {
		ids[i] = out[i].ID
		index[out[i].ID] = i
	}

	itemRows, err := r.pool.Query(ctx, itemsByOrdersSQL, ids)
	if err != nil {
		return nil, errors.Wrap(err, "query order items")
	}
	items, err := pgx.CollectRows(itemRows, scanItem)
	if err != nil {
		return nil, errors.Wrap(err, "collect order items")
	}
	for _, it := range items {
		i := index[it.OrderID]
		out[i].Items = append(out[i].Items, it.Item)
	}
	return out, nil
}

// Create inserts the order and its items atomically. A code collision at
// commit time surfaces as order.CodeExistsError.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertOrderSQL, o.ID, o.Code, o.Total, o.CreationDate, o.UserID); err != nil {
			return errors.Wrap(err, "insert order")
		}
		return insertItems(ctx, tx, o)
	})
	if isUniqueViolation(err, orderCodeConstraint) {
		return &order.CodeExistsError{Code: o.Code}
	}
	return err
}

// Replace rewrites the order row and swaps its full item set in one
// transaction. Items are deleted by the internal order ID, which is stable
// across code renames.
func (r *OrderRepository) Replace(ctx context.Context, o *order.Order) error {
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteItemsSQL, o.ID); err != nil {
			return errors.Wrap(err, "delete order items")
		}
		tag, err := tx.Exec(ctx, updateOrderSQL, o.ID, o.Code, o.Total, o.CreationDate)
		if err != nil {
			return errors.Wrap(err, "update order")
		}
		if tag.RowsAffected() == 0 {
			return order.ErrNotFound
		}
		return insertItems(ctx, tx, o)
	})
	if isUniqueViolation(err, orderCodeConstraint) {
		return &order.CodeExistsError{Code: o.Code}
	}
	return err
}

// Delete removes the order's items and then the order row, atomically.
func (r *OrderRepository) Delete(ctx context.Context, orderID string) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteItemsSQL, orderID); err != nil {
			return errors.Wrap(err, "delete order items")
		}
		if _, err := tx.Exec(ctx, deleteOrderSQL, orderID); err != nil {
			return errors.Wrap(err, "delete order")
		}
		return nil
	})
}

func (r *OrderRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	return nil
}

func (r *OrderRepository) findRow(ctx context.Context, query string, args ...any) (*order.Order, error) {
	var o order.Order
	err := r.pool.QueryRow(ctx, query, args...).Scan(&o.ID, &o.Code, &o.Total, &o.CreationDate, &o.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrap(err, "query order")
	}
	return &o, nil
}

func insertItems(ctx context.Context, tx pgx.Tx, o *order.Order) error {
	for _, it := range o.Items {
		_, err := tx.Exec(ctx, insertItemSQL, it.ID, o.ID, it.ProductID, it.Quantity, it.Price)
		if err != nil {
			return errors.Wrapf(err, "insert item for product %q", it.ProductID)
		}
	}
	return nil
}

// ownedItem pairs an item with its owning order ID for batched scans.
type ownedItem struct {
	OrderID string
	Item    order.Item
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(&o.ID, &o.Code, &o.Total, &o.CreationDate, &o.UserID)
	return o, err
}

func scanItem(row pgx.CollectableRow) (ownedItem, error) {
	var it ownedItem
	err := row.Scan(&it.Item.ID, &it.OrderID, &it.Item.ProductID, &it.Item.Quantity, &it.Item.Price)
	return it, err
}
