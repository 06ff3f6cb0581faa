package postgres

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/order-placement/internal/domain/product"
)

const (
	productColumns = `id, name, price, quantity, created_at, updated_at`

	createProductSQL = `INSERT INTO products (id, name, price, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + productColumns

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getProductByNameSQL = `SELECT ` + productColumns + ` FROM products
		WHERE name = $1 ORDER BY created_at, id LIMIT 1`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products
		WHERE id = ANY($1) ORDER BY id`

	// Row locks are taken in id order so concurrent orders cannot deadlock.
	lockProductsByIDsSQL = getProductsByIDsSQL + ` FOR UPDATE`

	decrementStockSQL = `UPDATE products
		SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity >= $2
		RETURNING ` + productColumns

	productExistsSQL = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`

	listProductNamesSQL = `SELECT name FROM products`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	db *DB
}

// NewProductRepository returns a ProductRepository that uses the given DB.
func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a product with a generated id.
func (r *ProductRepository) Create(ctx context.Context, params product.CreateParams) (*product.Product, error) {
	rows, err := r.db.conn(ctx).Query(ctx, createProductSQL,
		uuid.NewString(), params.Name, params.Price, params.Quantity,
	)
	if err != nil {
		return nil, fmt.Errorf("creating product %q: %w", params.Name, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("creating product %q: %w", params.Name, err)
	}
	return &p, nil
}

// FindByID returns a single product by its identifier.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*product.Product, error) {
	return r.findOne(ctx, getProductByIDSQL, id)
}

// FindByName returns the oldest product with the given name.
func (r *ProductRepository) FindByName(ctx context.Context, name string) (*product.Product, error) {
	return r.findOne(ctx, getProductByNameSQL, name)
}

func (r *ProductRepository) findOne(ctx context.Context, sql, arg string) (*product.Product, error) {
	rows, err := r.db.conn(ctx).Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", arg, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", arg, err)
	}
	return &p, nil
}

// FindAllByID returns products matching any of the given IDs ordered by id.
// Inside a transaction the rows stay locked until it ends.
func (r *ProductRepository) FindAllByID(ctx context.Context, ids []string) ([]product.Product, error) {
	sql := getProductsByIDsSQL
	if inTx(ctx) {
		sql = lockProductsByIDsSQL
	}

	rows, err := r.db.conn(ctx).Query(ctx, sql, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return products, nil
}

// UpdateQuantity subtracts each requested quantity with a conditional
// update, so stock never drops below zero even without prior row locks.
// Updates are applied in id order; results come back in input order.
func (r *ProductRepository) UpdateQuantity(ctx context.Context, updates []product.QuantityUpdate) ([]product.Product, error) {
	out := make([]product.Product, len(updates))

	seq := make([]int, len(updates))
	for i := range seq {
		seq[i] = i
	}
	slices.SortStableFunc(seq, func(a, b int) int {
		return cmp.Compare(updates[a].ID, updates[b].ID)
	})

	err := r.db.WithinTx(ctx, func(ctx context.Context) error {
		q := r.db.conn(ctx)
		for _, i := range seq {
			u := updates[i]
			rows, err := q.Query(ctx, decrementStockSQL, u.ID, u.Quantity)
			if err != nil {
				return fmt.Errorf("decrementing stock of %q: %w", u.ID, err)
			}
			p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
			if errors.Is(err, pgx.ErrNoRows) {
				return r.missedDecrement(ctx, q, u)
			}
			if err != nil {
				return fmt.Errorf("decrementing stock of %q: %w", u.ID, err)
			}
			out[i] = p
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// missedDecrement explains why the conditional update matched no row.
func (r *ProductRepository) missedDecrement(ctx context.Context, q querier, u product.QuantityUpdate) error {
	var exists bool
	if err := q.QueryRow(ctx, productExistsSQL, u.ID).Scan(&exists); err != nil {
		return fmt.Errorf("checking product %q: %w", u.ID, err)
	}
	if !exists {
		return product.ErrNotFound
	}
	return &product.InsufficientStockError{ProductID: u.ID, Requested: u.Quantity}
}

// EachName calls fn with the name of every stored product.
func (r *ProductRepository) EachName(ctx context.Context, fn func(name string) error) error {
	rows, err := r.db.conn(ctx).Query(ctx, listProductNamesSQL)
	if err != nil {
		return fmt.Errorf("listing product names: %w", err)
	}

	var name string
	_, err = pgx.ForEachRow(rows, []any{&name}, func() error {
		return fn(name)
	})
	if err != nil {
		return fmt.Errorf("listing product names: %w", err)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p        product.Product
		price    decimal.Decimal
		quantity int32
	)
	err := row.Scan(&p.ID, &p.Name, &price, &quantity, &p.CreatedAt, &p.UpdatedAt)
	p.Price = price
	p.Quantity = int(quantity)
	return p, err
}
