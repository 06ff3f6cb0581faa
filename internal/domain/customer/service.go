package customer

import (
	"context"
	"net/mail"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/order-placement/internal/domain/apperr"
)

// Service registers customers.
type Service struct {
	customers Repository
}

// NewService creates a customer Service backed by the given Repository.
func NewService(customers Repository) *Service {
	return &Service{customers: customers}
}

// Register validates params and creates the customer. Emails are unique and
// compared case-insensitively.
func (s *Service) Register(ctx context.Context, params CreateParams) (*Customer, error) {
	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return nil, apperr.Validation("Customer name is required")
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(params.Email))
	if err != nil {
		return nil, apperr.Validation("Invalid email address").WithCause(err)
	}
	params.Email = strings.ToLower(addr.Address)

	_, err = s.customers.FindByEmail(ctx, params.Email)
	switch {
	case err == nil:
		return nil, apperr.Validation("Email address already used")
	case !errors.Is(err, ErrNotFound):
		return nil, errors.Wrap(err, "find customer by email")
	}

	c, err := s.customers.Create(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "create customer")
	}
	return c, nil
}
