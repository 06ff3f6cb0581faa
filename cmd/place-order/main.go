// Command place-order places an order for a customer and prints it as JSON.
//
//	place-order --customer <id> --items <productID=qty,...>
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

		return appkg.PlaceOrder(ctx, deps.OrderService, cfg, os.Stdout)
	})
}
