package customer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested customer does not exist.
var ErrNotFound = errors.New("customer not found")

// Customer is the buyer referenced by an order.
type Customer struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateParams holds the fields of a new customer.
type CreateParams struct {
	Name  string
	Email string
}

// Repository defines persistence operations for customers.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Customer, error)
	FindByID(ctx context.Context, id string) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
}
