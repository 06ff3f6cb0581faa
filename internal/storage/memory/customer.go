package memory

import (
	"context"

	"github.com/xenking/order-placement/internal/domain/customer"
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository on a Store.
type CustomerRepository struct {
	s *Store
}

func (r *CustomerRepository) Create(ctx context.Context, params customer.CreateParams) (*customer.Customer, error) {
	defer r.s.lock(ctx)()

	now := r.s.now()
	c := customer.Customer{
		ID:        r.s.newID(),
		Name:      params.Name,
		Email:     params.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.customers[c.ID] = c
	return &c, nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*customer.Customer, error) {
	defer r.s.lock(ctx)()

	c, ok := r.s.customers[id]
	if !ok {
		return nil, customer.ErrNotFound
	}
	return &c, nil
}

// FindByEmail matches the stored email exactly. Callers normalize case.
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	defer r.s.lock(ctx)()

	for _, c := range r.s.customers {
		if c.Email == email {
			return &c, nil
		}
	}
	return nil, customer.ErrNotFound
}
