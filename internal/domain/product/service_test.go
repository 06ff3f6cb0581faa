package product

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/order-placement/internal/domain/apperr"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byName    map[string]*Product
	findErr   error
	createErr error
	created   []CreateParams
}

func (m *mockProductRepo) Create(_ context.Context, params CreateParams) (*Product, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, params)
	return &Product{ID: "generated", Name: params.Name, Price: params.Price, Quantity: params.Quantity}, nil
}

func (m *mockProductRepo) FindByID(_ context.Context, _ string) (*Product, error) {
	return nil, ErrNotFound
}

func (m *mockProductRepo) FindByName(_ context.Context, name string) (*Product, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if p, ok := m.byName[name]; ok {
		return p, nil
	}
	return nil, ErrNotFound
}

func (m *mockProductRepo) FindAllByID(_ context.Context, _ []string) ([]Product, error) {
	return nil, nil
}

func (m *mockProductRepo) UpdateQuantity(_ context.Context, _ []QuantityUpdate) ([]Product, error) {
	return nil, nil
}

// --- Tests ---

func TestRegister_CreatesProduct(t *testing.T) {
	repo := &mockProductRepo{}
	svc := NewService(repo)

	p, err := svc.Register(context.Background(), CreateParams{
		Name:     "  Waffle  ",
		Price:    decimal.RequireFromString("6.5"),
		Quantity: 10,
	})

	require.NoError(t, err)
	assert.Equal(t, "Waffle", p.Name)
	assert.Equal(t, "6.50", p.FormattedPrice())
	require.Len(t, repo.created, 1)
	assert.Equal(t, "Waffle", repo.created[0].Name)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name    string
		params  CreateParams
		wantMsg string
	}{
		{
			name:    "empty name",
			params:  CreateParams{Name: " ", Price: decimal.NewFromInt(1)},
			wantMsg: "Product name is required",
		},
		{
			name:    "negative price",
			params:  CreateParams{Name: "Widget", Price: decimal.NewFromInt(-1)},
			wantMsg: "Product price must not be negative",
		},
		{
			name:    "negative quantity",
			params:  CreateParams{Name: "Widget", Price: decimal.NewFromInt(1), Quantity: -3},
			wantMsg: "Product quantity must not be negative",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockProductRepo{}
			_, err := NewService(repo).Register(context.Background(), tt.params)

			require.ErrorIs(t, err, apperr.ErrValidation)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Empty(t, repo.created)
		})
	}
}

func TestRegister_DuplicateName(t *testing.T) {
	repo := &mockProductRepo{byName: map[string]*Product{
		"Widget": {ID: "p1", Name: "Widget"},
	}}

	_, err := NewService(repo).Register(context.Background(), CreateParams{
		Name:  "Widget",
		Price: decimal.NewFromInt(3),
	})

	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Product name already used", err.Error())
	assert.Empty(t, repo.created)
}

func TestRegister_LookupError(t *testing.T) {
	repo := &mockProductRepo{findErr: errors.New("connection reset")}

	_, err := NewService(repo).Register(context.Background(), CreateParams{
		Name:  "Widget",
		Price: decimal.NewFromInt(3),
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindUnknown, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "find product by name")
}

func TestFormattedPrice(t *testing.T) {
	tests := []struct {
		price string
		want  string
	}{
		{price: "10", want: "10.00"},
		{price: "4.5", want: "4.50"},
		{price: "7.125", want: "7.13"},
		{price: "0", want: "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			p := Product{Price: decimal.RequireFromString(tt.price)}
			assert.Equal(t, tt.want, p.FormattedPrice())
		})
	}
}

func TestInsufficientStockError(t *testing.T) {
	var err error = &InsufficientStockError{ProductID: "p1", Requested: 5}

	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "insufficient stock for product p1: requested 5", err.Error())
}
