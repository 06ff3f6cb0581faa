package app

import (
	"os"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the configuration shared by all commands, loadable from
// environment variables (ORDERS_ prefix), flags, or YAML config files.
// Command-specific fields are ignored by the other commands.
type Config struct {
	DatabaseURL string `usage:"PostgreSQL connection URL (ORDERS_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Migrate     bool   `default:"true" usage:"Apply the embedded schema before running" flag:"migrate"`

	// place-order
	Customer string `usage:"Id of the customer placing the order" flag:"customer"`
	Items    string `usage:"Requested items as productID=quantity pairs separated by commas" flag:"items"`

	// find-order
	OrderID string `usage:"Id of the order to print" flag:"order-id"`

	// seed-db
	SeedFile string `default:"db/seed/seed.json" usage:"Path to the seed JSON file" flag:"seed-file"`

	// catalog-import
	DataDir string  `default:"data" usage:"Directory containing *.jsonl.gz product files" flag:"data-dir"`
	Workers int     `default:"4" usage:"Number of files read concurrently" flag:"workers"`
	BloomN  uint    `default:"1000000" usage:"Expected number of distinct product names" flag:"bloom-n"`
	BloomP  float64 `default:"0.001" usage:"Bloom filter false positive rate" flag:"bloom-p"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files and the given command line arguments, then applies platform defaults.
func LoadConfig(args []string) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "ORDERS",
		Files:     []string{"orders.yaml", "/etc/orders/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
		Args: args,
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set ORDERS_DATABASE_URL or DATABASE_URL")
	}
	if cfg.Workers < 1 {
		return nil, errors.Errorf("workers must be positive, got %d", cfg.Workers)
	}

	return &cfg, nil
}

// applyPlatformDefaults maps the conventional DATABASE_URL variable to the
// ORDERS_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
}
