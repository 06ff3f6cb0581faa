package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/order-placement/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (id, customer_id)
		VALUES ($1, $2)
		RETURNING created_at`

	createOrderProductSQL = `INSERT INTO orders_products (order_id, product_id, position, price, quantity)
		VALUES ($1, $2, $3, $4, $5)`

	getOrderByIDSQL = `SELECT o.id, o.created_at,
			c.id, c.name, c.email, c.created_at, c.updated_at,
			op.product_id, p.name, op.price, op.quantity
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		JOIN orders_products op ON op.order_id = o.id
		JOIN products p ON p.id = op.product_id
		WHERE o.id = $1
		ORDER BY op.position`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	db *DB
}

// NewOrderRepository returns an OrderRepository that uses the given DB.
func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists a new order and one orders_products row per line item in
// a single batch.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	b := &pgx.Batch{}
	b.Queue(createOrderSQL, o.ID, o.CustomerID).QueryRow(func(row pgx.Row) error {
		return row.Scan(&o.CreatedAt)
	})
	for i, item := range o.Items {
		b.Queue(createOrderProductSQL, o.ID, item.ProductID, i, item.Price, item.Quantity)
	}

	err := r.db.WithinTx(ctx, func(ctx context.Context) error {
		return r.db.conn(ctx).SendBatch(ctx, b).Close()
	})
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// FindByID loads an order with its customer and line items.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.db.conn(ctx).Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	var (
		o        order.Order
		item     order.LineItem
		price    decimal.Decimal
		quantity int32
	)
	_, err = pgx.ForEachRow(rows, []any{
		&o.ID, &o.CreatedAt,
		&o.Customer.ID, &o.Customer.Name, &o.Customer.Email, &o.Customer.CreatedAt, &o.Customer.UpdatedAt,
		&item.ProductID, &item.Name, &price, &quantity,
	}, func() error {
		item.Price = price
		item.Quantity = int(quantity)
		o.Items = append(o.Items, item)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	// Every stored order has at least one line item.
	if len(o.Items) == 0 {
		return nil, order.ErrOrderNotFound
	}
	o.CustomerID = o.Customer.ID
	return &o, nil
}
