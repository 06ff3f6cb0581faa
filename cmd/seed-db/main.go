// Command seed-db registers the customers and products of a seed file,
// skipping the ones already stored.
//
//	seed-db --seed-file db/seed/seed.json
package main

import (
	"context"
	"os"

	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	appkg "github.com/xenking/order-placement/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := appkg.LoadConfig(os.Args[1:])
		if err != nil {
			return err
		}
		deps, err := appkg.Open(ctx, lg, m, cfg)
		if err != nil {
			return err
		}
		defer deps.Close()

		return appkg.SeedDB(ctx, lg, &appkg.Seeder{
			Customers: deps.Customers,
			Products:  deps.Products,
			Tx:        deps.DB,
		}, cfg)
	})
}
