package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/order-placement/internal/domain/apperr"
	"github.com/xenking/order-placement/internal/domain/customer"
	"github.com/xenking/order-placement/internal/domain/product"
)

// Item is a requested product and the quantity to purchase.
type Item struct {
	ProductID string
	Quantity  int
}

// CreateRequest holds the input for creating an order.
type CreateRequest struct {
	CustomerID string
	Items      []Item
}

// Service encapsulates order creation and lookup.
type Service struct {
	customers customer.Repository
	products  product.Repository
	orders    Repository
	tx        Transactor
	newID     func() string
}

// NewService creates an order Service with the required stores.
func NewService(
	customers customer.Repository,
	products product.Repository,
	orders Repository,
	tx Transactor,
) *Service {
	return &Service{
		customers: customers,
		products:  products,
		orders:    orders,
		tx:        tx,
		newID:     func() string { return uuid.New().String() },
	}
}

func invalidProducts() *apperr.Error {
	return apperr.Validation("Invalid product(s)")
}

func invalidQuantity(productID string) *apperr.Error {
	return apperr.Validation("Invalid quantity for product " + productID).WithProduct(productID)
}

// CreateOrder resolves the customer, validates the items, checks stock,
// decrements inventory and persists the order. Everything after the item
// checks runs in one transaction with the requested products locked, so a
// failure leaves stock untouched and concurrent orders cannot oversell.
func (s *Service) CreateOrder(ctx context.Context, req CreateRequest) (*Order, error) {
	c, err := s.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, apperr.NotFound("Customer not found")
		}
		return nil, errors.Wrap(err, "find customer")
	}

	if len(req.Items) == 0 {
		return nil, apperr.Validation("No products requested")
	}

	ids := make([]string, len(req.Items))
	requested := make(map[string]int, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, apperr.Validation("Quantity must be greater than zero for product " + item.ProductID).
				WithProduct(item.ProductID)
		}
		if _, dup := requested[item.ProductID]; dup {
			return nil, invalidProducts()
		}
		requested[item.ProductID] = item.Quantity
		ids[i] = item.ProductID
	}

	var created *Order
	if err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		fetched, err := s.products.FindAllByID(ctx, ids)
		if err != nil {
			return errors.Wrap(err, "find products")
		}
		if len(fetched) != len(ids) {
			return invalidProducts()
		}

		// First insufficient product in fetch order.
		for _, p := range fetched {
			if p.Quantity < requested[p.ID] {
				return invalidQuantity(p.ID)
			}
		}

		updates := make([]product.QuantityUpdate, len(req.Items))
		for i, item := range req.Items {
			updates[i] = product.QuantityUpdate{ID: item.ProductID, Quantity: item.Quantity}
		}
		updated, err := s.products.UpdateQuantity(ctx, updates)
		if err != nil {
			var stockErr *product.InsufficientStockError
			switch {
			case errors.Is(err, product.ErrNotFound):
				return apperr.NotFound("Product not found").WithCause(err)
			case errors.As(err, &stockErr):
				return invalidQuantity(stockErr.ProductID).WithCause(err)
			}
			return errors.Wrap(err, "update stock")
		}

		o := &Order{
			ID:         s.newID(),
			CustomerID: c.ID,
			Customer:   *c,
			Items:      make([]LineItem, len(updated)),
		}
		for i, p := range updated {
			o.Items[i] = LineItem{
				ProductID: p.ID,
				Name:      p.Name,
				Price:     p.Price,
				Quantity:  requested[p.ID],
			}
		}
		if err := s.orders.Create(ctx, o); err != nil {
			return errors.Wrap(err, "create order")
		}
		created = o
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// FindOrder returns a stored order with its customer and line items.
func (s *Service) FindOrder(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, apperr.NotFound("Order not found")
		}
		return nil, errors.Wrap(err, "find order")
	}
	return o, nil
}
