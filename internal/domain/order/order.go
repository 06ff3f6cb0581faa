package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/order-placement/internal/domain/customer"
)

// ErrOrderNotFound is returned by Repository.FindByID when no order matches.
var ErrOrderNotFound = errors.New("order not found")

// Order is a customer's purchase of one or more products.
type Order struct {
	ID         string
	CustomerID string
	Customer   customer.Customer
	Items      []LineItem
	CreatedAt  time.Time
}

// Total returns the sum of all line item subtotals.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Units returns the number of purchased units across all line items.
func (o *Order) Units() int {
	var n int
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// LineItem associates an order with a product and the purchased quantity.
// Price is the unit price at purchase time.
type LineItem struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// Subtotal returns Price multiplied by Quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists the order and its line items and sets CreatedAt.
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
}

// Transactor runs fn inside a single datastore transaction. Repositories
// called with the context passed to fn take part in that transaction, and
// any error returned by fn rolls it back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
