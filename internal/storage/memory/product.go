package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/xenking/order-placement/internal/domain/product"
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository on a Store.
type ProductRepository struct {
	s *Store
}

func (r *ProductRepository) Create(ctx context.Context, params product.CreateParams) (*product.Product, error) {
	defer r.s.lock(ctx)()

	now := r.s.now()
	p := product.Product{
		ID:        r.s.newID(),
		Name:      params.Name,
		Price:     params.Price,
		Quantity:  params.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.products[p.ID] = p
	return &p, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*product.Product, error) {
	defer r.s.lock(ctx)()

	p, ok := r.s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

// FindByName returns the oldest product with the given name.
func (r *ProductRepository) FindByName(ctx context.Context, name string) (*product.Product, error) {
	defer r.s.lock(ctx)()

	var found *product.Product
	for _, p := range r.s.products {
		if p.Name != name {
			continue
		}
		if found == nil || p.CreatedAt.Before(found.CreatedAt) {
			found = &p
		}
	}
	if found == nil {
		return nil, product.ErrNotFound
	}
	return found, nil
}

// FindAllByID returns matching products ordered by id, like the postgres
// store does.
func (r *ProductRepository) FindAllByID(ctx context.Context, ids []string) ([]product.Product, error) {
	defer r.s.lock(ctx)()

	out := make([]product.Product, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := r.s.products[id]; ok {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b product.Product) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// UpdateQuantity applies every decrement or none of them.
func (r *ProductRepository) UpdateQuantity(ctx context.Context, updates []product.QuantityUpdate) ([]product.Product, error) {
	defer r.s.lock(ctx)()

	now := r.s.now()
	work := make(map[string]product.Product, len(updates))
	out := make([]product.Product, 0, len(updates))
	for _, u := range updates {
		p, ok := work[u.ID]
		if !ok {
			if p, ok = r.s.products[u.ID]; !ok {
				return nil, product.ErrNotFound
			}
		}
		if p.Quantity < u.Quantity {
			return nil, &product.InsufficientStockError{ProductID: u.ID, Requested: u.Quantity}
		}
		p.Quantity -= u.Quantity
		p.UpdatedAt = now
		work[u.ID] = p
		out = append(out, p)
	}
	for id, p := range work {
		r.s.products[id] = p
	}
	return out, nil
}

// EachName calls fn with the name of every stored product.
func (r *ProductRepository) EachName(ctx context.Context, fn func(name string) error) error {
	unlock := r.s.lock(ctx)
	names := make([]string, 0, len(r.s.products))
	for _, p := range r.s.products {
		names = append(names, p.Name)
	}
	unlock()

	for _, name := range names {
		if err := fn(name); err != nil {
			return err
		}
	}
	return nil
}
