package app

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/order-placement/internal/domain/customer"
	"github.com/xenking/order-placement/internal/domain/order"
	"github.com/xenking/order-placement/internal/domain/product"
)

type seedJSON struct {
	Customers []struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"customers"`
	Products []struct {
		Name     string          `json:"name"`
		Price    decimal.Decimal `json:"price"`
		Quantity int             `json:"quantity"`
	} `json:"products"`
}

// SeedResult counts the records created and the ones already present.
type SeedResult struct {
	CustomersCreated int
	CustomersSkipped int
	ProductsCreated  int
	ProductsSkipped  int
}

// Seeder registers the customers and products of a seed file in one
// transaction. Customers are matched by email and products by name; existing
// records are left untouched.
type Seeder struct {
	Customers customer.Repository
	Products  product.Repository
	Tx        order.Transactor
}

// Seed reads a seed document from r and applies it.
func (s *Seeder) Seed(ctx context.Context, r io.Reader) (SeedResult, error) {
	var doc seedJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return SeedResult{}, errors.Wrap(err, "parse seed JSON")
	}

	lg := zctx.From(ctx)
	customers := customer.NewService(s.Customers)
	products := product.NewService(s.Products)

	var res SeedResult
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		res = SeedResult{}
		for _, c := range doc.Customers {
			email := strings.ToLower(strings.TrimSpace(c.Email))
			_, err := s.Customers.FindByEmail(ctx, email)
			switch {
			case err == nil:
				res.CustomersSkipped++
				continue
			case !errors.Is(err, customer.ErrNotFound):
				return errors.Wrapf(err, "find customer %s", email)
			}

			created, err := customers.Register(ctx, customer.CreateParams{Name: c.Name, Email: c.Email})
			if err != nil {
				return errors.Wrapf(err, "register customer %s", email)
			}
			res.CustomersCreated++
			lg.Info("Customer created", zap.String("id", created.ID), zap.String("email", created.Email))
		}

		for _, p := range doc.Products {
			name := strings.TrimSpace(p.Name)
			_, err := s.Products.FindByName(ctx, name)
			switch {
			case err == nil:
				res.ProductsSkipped++
				continue
			case !errors.Is(err, product.ErrNotFound):
				return errors.Wrapf(err, "find product %s", name)
			}

			created, err := products.Register(ctx, product.CreateParams{
				Name:     name,
				Price:    p.Price,
				Quantity: p.Quantity,
			})
			if err != nil {
				return errors.Wrapf(err, "register product %s", name)
			}
			res.ProductsCreated++
			lg.Info("Product created",
				zap.String("id", created.ID),
				zap.String("name", created.Name),
				zap.String("price", created.FormattedPrice()),
				zap.Int("quantity", created.Quantity),
			)
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}
	return res, nil
}
