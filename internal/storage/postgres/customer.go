package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/order-placement/internal/domain/customer"
)

const (
	createCustomerSQL = `INSERT INTO customers (id, name, email)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, created_at, updated_at`

	getCustomerByIDSQL = `SELECT id, name, email, created_at, updated_at
		FROM customers WHERE id = $1`

	getCustomerByEmailSQL = `SELECT id, name, email, created_at, updated_at
		FROM customers WHERE email = $1`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	db *DB
}

// NewCustomerRepository returns a CustomerRepository that uses the given DB.
func NewCustomerRepository(db *DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Create inserts a customer with a generated id.
func (r *CustomerRepository) Create(ctx context.Context, params customer.CreateParams) (*customer.Customer, error) {
	rows, err := r.db.conn(ctx).Query(ctx, createCustomerSQL, uuid.NewString(), params.Name, params.Email)
	if err != nil {
		return nil, fmt.Errorf("creating customer %q: %w", params.Email, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		return nil, fmt.Errorf("creating customer %q: %w", params.Email, err)
	}
	return &c, nil
}

// FindByID returns customer.ErrNotFound when no customer has the given id.
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*customer.Customer, error) {
	return r.findOne(ctx, getCustomerByIDSQL, id)
}

func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	return r.findOne(ctx, getCustomerByEmailSQL, email)
}

func (r *CustomerRepository) findOne(ctx context.Context, sql, arg string) (*customer.Customer, error) {
	rows, err := r.db.conn(ctx).Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("finding customer %q: %w", arg, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("finding customer %q: %w", arg, err)
	}
	return &c, nil
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
