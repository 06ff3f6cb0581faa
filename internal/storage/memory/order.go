package memory

import (
	"context"

	"github.com/xenking/order-placement/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository on a Store.
type OrderRepository struct {
	s *Store
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	defer r.s.lock(ctx)()

	o.CreatedAt = r.s.now()
	r.s.orders[o.ID] = cloneOrder(*o)
	return nil
}

// FindByID returns the order with the customer record as currently stored.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	defer r.s.lock(ctx)()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	o = cloneOrder(o)
	if c, ok := r.s.customers[o.CustomerID]; ok {
		o.Customer = c
	}
	return &o, nil
}
