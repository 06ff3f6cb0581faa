package product

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// InsufficientStockError is returned by UpdateQuantity when the stored stock
// is lower than the quantity being subtracted.
type InsufficientStockError struct {
	ProductID string
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d", e.ProductID, e.Requested)
}

// Product represents a catalog item available for purchase.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FormattedPrice renders the price with exactly two fraction digits.
func (p Product) FormattedPrice() string {
	return p.Price.StringFixed(2)
}

// CreateParams holds the fields of a new product.
type CreateParams struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// QuantityUpdate subtracts Quantity from the stock of product ID.
type QuantityUpdate struct {
	ID       string
	Quantity int
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Product, error)
	FindByID(ctx context.Context, id string) (*Product, error)
	FindByName(ctx context.Context, name string) (*Product, error)
	// FindAllByID returns the products matching ids. Unknown ids are dropped.
	FindAllByID(ctx context.Context, ids []string) ([]Product, error)
	// UpdateQuantity decrements stock for every entry atomically and returns
	// the updated products in input order.
	UpdateQuantity(ctx context.Context, updates []QuantityUpdate) ([]Product, error)
}
