package product

import (
	"context"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/order-placement/internal/domain/apperr"
)

// Service registers products in the catalog.
type Service struct {
	products Repository
}

// NewService creates a product Service backed by the given Repository.
func NewService(products Repository) *Service {
	return &Service{products: products}
}

// Register validates params and creates the product. Product names are
// unique by convention, so a name already in the catalog is rejected.
func (s *Service) Register(ctx context.Context, params CreateParams) (*Product, error) {
	params.Name = strings.TrimSpace(params.Name)
	switch {
	case params.Name == "":
		return nil, apperr.Validation("Product name is required")
	case params.Price.IsNegative():
		return nil, apperr.Validation("Product price must not be negative")
	case params.Quantity < 0:
		return nil, apperr.Validation("Product quantity must not be negative")
	}

	_, err := s.products.FindByName(ctx, params.Name)
	switch {
	case err == nil:
		return nil, apperr.Validation("Product name already used")
	case !errors.Is(err, ErrNotFound):
		return nil, errors.Wrap(err, "find product by name")
	}

	p, err := s.products.Create(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	return p, nil
}
