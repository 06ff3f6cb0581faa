package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xenking/order-placement/internal/domain/apperr"
	"github.com/xenking/order-placement/internal/domain/customer"
	"github.com/xenking/order-placement/internal/domain/order"
	"github.com/xenking/order-placement/internal/domain/product"
	"github.com/xenking/order-placement/internal/storage/memory"
)

type fixture struct {
	store    *memory.Store
	svc      *order.Service
	customer *customer.Customer
	product  *product.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	store := memory.New()
	c, err := store.Customers().Create(ctx, customer.CreateParams{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	p, err := store.Products().Create(ctx, product.CreateParams{
		Name:     "Waffle",
		Price:    decimal.RequireFromString("6.50"),
		Quantity: 10,
	})
	require.NoError(t, err)

	return &fixture{
		store:    store,
		svc:      order.NewService(store.Customers(), store.Products(), store.Orders(), store),
		customer: c,
		product:  p,
	}
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t)

	var out bytes.Buffer
	err := PlaceOrder(context.Background(), f.svc, &Config{
		Customer: f.customer.ID,
		Items:    f.product.ID + "=3",
	}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), `"total":"19.50"`)
	assert.Contains(t, out.String(), `"quantity":3`)

	p, err := f.store.Products().FindByID(context.Background(), f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Quantity)
}

func TestPlaceOrder_Rejected(t *testing.T) {
	f := newFixture(t)

	var out bytes.Buffer
	err := PlaceOrder(context.Background(), f.svc, &Config{
		Customer: f.customer.ID,
		Items:    f.product.ID + "=50",
	}, &out)
	require.ErrorIs(t, err, apperr.ErrValidation)

	assert.JSONEq(t, `{"error":{
		"kind":"ValidationError",
		"message":"Invalid quantity for product `+f.product.ID+`",
		"productId":"`+f.product.ID+`"
	}}`, out.String())
}

func TestPlaceOrder_BadItems(t *testing.T) {
	f := newFixture(t)

	var out bytes.Buffer
	err := PlaceOrder(context.Background(), f.svc, &Config{Customer: f.customer.ID, Items: "oops"}, &out)
	require.Error(t, err)
	assert.Empty(t, out.String())
}

func TestFindOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o, err := f.svc.CreateOrder(ctx, order.CreateRequest{
		CustomerID: f.customer.ID,
		Items:      []order.Item{{ProductID: f.product.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, FindOrder(ctx, f.svc, &Config{OrderID: o.ID}, &out))
	assert.Contains(t, out.String(), `"id":"`+o.ID+`"`)
	assert.Contains(t, out.String(), `"email":"ada@example.com"`)

	out.Reset()
	err = FindOrder(ctx, f.svc, &Config{OrderID: "missing"}, &out)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Contains(t, out.String(), `"Order not found"`)

	require.Error(t, FindOrder(ctx, f.svc, &Config{}, &out))
}

func TestSeedDB(t *testing.T) {
	store := memory.New()
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(seedDoc), 0o600))

	err := SeedDB(context.Background(), zaptest.NewLogger(t), newSeeder(store), &Config{SeedFile: path})
	require.NoError(t, err)

	_, err = store.Products().FindByName(context.Background(), "Baklava")
	require.NoError(t, err)

	err = SeedDB(context.Background(), zaptest.NewLogger(t), newSeeder(store), &Config{SeedFile: path + ".missing"})
	require.Error(t, err)
}

func TestImportCatalog_EmptyDir(t *testing.T) {
	store := memory.New()

	err := ImportCatalog(context.Background(), zaptest.NewLogger(t), store.Products(), store.Products(), &Config{
		DataDir: t.TempDir(),
		Workers: 2,
	})
	require.NoError(t, err)
}
