// Package app wires configuration, stores and services for the commands.
package app

import (
	"context"
	"io"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	"github.com/xenking/order-placement/internal/catalog"
	"github.com/xenking/order-placement/internal/domain/order"
	"github.com/xenking/order-placement/internal/domain/product"
	"github.com/xenking/order-placement/internal/observability"
	"github.com/xenking/order-placement/internal/storage/postgres"
)

// Deps holds the stores and services built from Config.
type Deps struct {
	DB        *postgres.DB
	Customers *postgres.CustomerRepository
	Products  *postgres.ProductRepository
	Orders    *postgres.OrderRepository

	// OrderService is the instrumented order workflow.
	OrderService observability.OrderService
}

// Open connects to PostgreSQL, applies the schema when cfg.Migrate is set
// and wires the stores. It is the single wiring point for the commands.
// Close releases the connection pool.
func Open(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) (*Deps, error) {
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "create db pool")
	}

	if cfg.Migrate {
		lg.Debug("Applying schema")
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, errors.Wrap(err, "run migrations")
		}
	}

	db := postgres.New(pool)
	d := &Deps{
		DB:        db,
		Customers: postgres.NewCustomerRepository(db),
		Products:  postgres.NewProductRepository(db),
		Orders:    postgres.NewOrderRepository(db),
	}

	orders, err := observability.NewOrders(
		order.NewService(d.Customers, d.Products, d.Orders, db),
		m.TracerProvider(),
		m.MeterProvider(),
	)
	if err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "instrument order service")
	}
	d.OrderService = orders

	return d, nil
}

// Close releases the connection pool.
func (d *Deps) Close() {
	d.DB.Pool().Close()
}

// PlaceOrder creates the order described by cfg.Customer and cfg.Items and
// prints it as JSON. Rejected orders are printed as a JSON error object and
// returned.
func PlaceOrder(ctx context.Context, svc observability.OrderService, cfg *Config, out io.Writer) error {
	items, err := ParseItems(cfg.Items)
	if err != nil {
		return errors.Wrap(err, "parse items")
	}

	o, err := svc.CreateOrder(ctx, order.CreateRequest{
		CustomerID: cfg.Customer,
		Items:      items,
	})
	if err != nil {
		if werr := WriteError(out, err); werr != nil {
			return werr
		}
		return err
	}
	return WriteOrder(out, o)
}

// FindOrder prints the order cfg.OrderID as JSON.
func FindOrder(ctx context.Context, svc observability.OrderService, cfg *Config, out io.Writer) error {
	if cfg.OrderID == "" {
		return errors.New("order id is required: set --order-id")
	}

	o, err := svc.FindOrder(ctx, cfg.OrderID)
	if err != nil {
		if werr := WriteError(out, err); werr != nil {
			return werr
		}
		return err
	}
	return WriteOrder(out, o)
}

// SeedDB applies the seed file cfg.SeedFile.
func SeedDB(ctx context.Context, lg *zap.Logger, s *Seeder, cfg *Config) error {
	lg.Info("Reading seed file", zap.String("path", cfg.SeedFile))

	f, err := os.Open(cfg.SeedFile)
	if err != nil {
		return errors.Wrap(err, "open seed file")
	}
	defer func() { _ = f.Close() }()

	res, err := s.Seed(ctx, f)
	if err != nil {
		return errors.Wrap(err, "seed")
	}

	lg.Info("Seed completed",
		zap.Int("customers_created", res.CustomersCreated),
		zap.Int("customers_skipped", res.CustomersSkipped),
		zap.Int("products_created", res.ProductsCreated),
		zap.Int("products_skipped", res.ProductsSkipped),
	)
	return nil
}

// ImportCatalog registers the products of every *.jsonl.gz file in
// cfg.DataDir that are not yet in the store.
func ImportCatalog(ctx context.Context, lg *zap.Logger, store catalog.Store, products product.Repository, cfg *Config) error {
	files, err := catalog.Files(cfg.DataDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		lg.Info("No catalog files found", zap.String("dir", cfg.DataDir))
		return nil
	}

	im := catalog.NewImporter(store, product.NewService(products), catalog.Options{
		Workers:           cfg.Workers,
		ExpectedNames:     cfg.BloomN,
		FalsePositiveRate: cfg.BloomP,
		ProgressEvery:     10_000,
	})
	stats, err := im.Import(ctx, files)
	if err != nil {
		return errors.Wrap(err, "import catalog")
	}

	lg.Info("Catalog import completed",
		zap.Int("files", len(files)),
		zap.Int("read", stats.Read),
		zap.Int("created", stats.Created),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("invalid", stats.Invalid),
		zap.Int("false_positives", stats.FalsePositives),
	)
	return nil
}
