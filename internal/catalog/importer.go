package catalog

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/order-placement/internal/domain/apperr"
	"github.com/xenking/order-placement/internal/domain/product"
)

// Store is the product store the importer deduplicates against.
type Store interface {
	EachName(ctx context.Context, fn func(name string) error) error
	FindByName(ctx context.Context, name string) (*product.Product, error)
}

// Registrar creates validated products.
type Registrar interface {
	Register(ctx context.Context, params product.CreateParams) (*product.Product, error)
}

var _ Registrar = (*product.Service)(nil)

// Options tune an Importer.
type Options struct {
	// Workers is the number of files read concurrently.
	Workers int
	// ExpectedNames and FalsePositiveRate size the bloom filter.
	ExpectedNames     uint
	FalsePositiveRate float64
	// ProgressEvery logs progress after this many records. Zero disables it.
	ProgressEvery int
}

func (o *Options) setDefaults() {
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.ExpectedNames == 0 {
		o.ExpectedNames = 1_000_000
	}
	if o.FalsePositiveRate <= 0 || o.FalsePositiveRate >= 1 {
		o.FalsePositiveRate = 0.001
	}
}

// entry is either a decoded record or a line that failed to decode.
type entry struct {
	record Record
	bad    *DecodeError
}

// Stats summarizes an import. Read counts every non-blank line.
type Stats struct {
	Read       int
	Created    int
	Duplicates int
	// Invalid counts malformed lines and records rejected by registration.
	Invalid int
	// FalsePositives counts bloom hits the store did not confirm.
	FalsePositives int
}

// Importer registers catalog records that are not yet in the store. Names
// already stored, or seen earlier in the same run, are skipped.
type Importer struct {
	store    Store
	products Registrar
	opts     Options
}

// NewImporter creates an Importer.
func NewImporter(store Store, products Registrar, opts Options) *Importer {
	opts.setDefaults()
	return &Importer{store: store, products: products, opts: opts}
}

// Files returns the sorted *.jsonl.gz files in dir.
func Files(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.jsonl.gz"))
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", dir)
	}
	slices.Sort(files)
	return files, nil
}

// Import reads files concurrently and registers new products from a single
// writer goroutine, so the bloom filter needs no locking.
func (im *Importer) Import(ctx context.Context, files []string) (Stats, error) {
	lg := zctx.From(ctx)

	filter := bloom.NewWithEstimates(im.opts.ExpectedNames, im.opts.FalsePositiveRate)
	var preloaded int
	if err := im.store.EachName(ctx, func(name string) error {
		filter.AddString(name)
		preloaded++
		return nil
	}); err != nil {
		return Stats{}, errors.Wrap(err, "preload names")
	}
	lg.Info("Bloom filter preloaded", zap.Int("names", preloaded), zap.Int("files", len(files)))

	var stats Stats
	entries := make(chan entry, 256)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(entries)

		readers, rctx := errgroup.WithContext(gctx)
		readers.SetLimit(im.opts.Workers)
		for _, path := range files {
			readers.Go(func() error {
				var n int
				send := func(e entry) error {
					n++
					select {
					case entries <- e:
						return nil
					case <-rctx.Done():
						return rctx.Err()
					}
				}
				err := ReadFile(rctx, path,
					func(r Record) error { return send(entry{record: r}) },
					func(bad *DecodeError) error { return send(entry{bad: bad}) },
				)
				if err != nil {
					return err
				}
				lg.Info("File read", zap.String("path", path), zap.Int("lines", n))
				return nil
			})
		}
		return readers.Wait()
	})
	g.Go(func() error {
		for e := range entries {
			if e.bad != nil {
				stats.Read++
				stats.Invalid++
				lg.Warn("Skipping malformed line",
					zap.String("path", e.bad.Path),
					zap.Int("line", e.bad.Line),
					zap.Error(e.bad.Err),
				)
			} else if err := im.add(gctx, filter, e.record, &stats); err != nil {
				return err
			}
			if im.opts.ProgressEvery > 0 && stats.Read%im.opts.ProgressEvery == 0 {
				lg.Info("Import progress",
					zap.Int("read", stats.Read),
					zap.Int("created", stats.Created),
				)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, nil
}

func (im *Importer) add(ctx context.Context, filter *bloom.BloomFilter, r Record, stats *Stats) error {
	stats.Read++
	r.Name = strings.TrimSpace(r.Name)

	if filter.TestString(r.Name) {
		_, err := im.store.FindByName(ctx, r.Name)
		switch {
		case err == nil:
			stats.Duplicates++
			return nil
		case errors.Is(err, product.ErrNotFound):
			stats.FalsePositives++
		default:
			return errors.Wrapf(err, "find product %q", r.Name)
		}
	}

	_, err := im.products.Register(ctx, product.CreateParams{
		Name:     r.Name,
		Price:    r.Price,
		Quantity: r.Quantity,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			stats.Invalid++
			zctx.From(ctx).Warn("Skipping record",
				zap.String("name", r.Name),
				zap.String("reason", err.Error()),
			)
			return nil
		}
		return errors.Wrapf(err, "register product %q", r.Name)
	}

	stats.Created++
	filter.AddString(r.Name)
	return nil
}
