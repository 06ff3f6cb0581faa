// Package catalog imports product catalogs from gzip-compressed JSON-lines
// files. Each line holds one product:
//
//	{"name":"Pistachio Baklava","price":"4.00","quantity":60}
//
// Price may be a JSON string or number.
package catalog

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
)

// maxLineSize bounds a single JSON line.
const maxLineSize = 1 << 20

// Record is one product line of a catalog file.
type Record struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// DecodeRecord decodes a single JSON object. Unknown fields are skipped.
func DecodeRecord(d *jx.Decoder) (Record, error) {
	var r Record
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			v, err := d.Str()
			if err != nil {
				return err
			}
			r.Name = v
		case "price":
			price, err := decodePrice(d)
			if err != nil {
				return err
			}
			r.Price = price
		case "quantity":
			v, err := d.Int()
			if err != nil {
				return err
			}
			r.Quantity = v
		default:
			return d.Skip()
		}
		return nil
	})
	return r, err
}

func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	var raw string
	switch d.Next() {
	case jx.String:
		v, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		raw = v
	case jx.Number:
		v, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		raw = v.String()
	default:
		return decimal.Zero, errors.Errorf("price: unexpected %s", d.Next())
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "price %q", raw)
	}
	return price, nil
}

// DecodeError reports a line that does not hold a valid record.
type DecodeError struct {
	Path string
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s:%d: decode: %v", e.Path, e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ReadFile streams the gzip-compressed JSON-lines file at path and calls fn
// for each record. Blank lines are skipped. A line that fails to decode is
// passed to invalid and reading continues; with a nil invalid the
// *DecodeError is returned instead. I/O and gzip failures always stop.
func ReadFile(ctx context.Context, path string, fn func(Record) error, invalid func(*DecodeError) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	var line int
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		b := bytes.TrimSpace(scanner.Bytes())
		if len(b) == 0 {
			continue
		}
		r, err := DecodeRecord(jx.DecodeBytes(b))
		if err != nil {
			decErr := &DecodeError{Path: path, Line: line, Err: err}
			if invalid == nil {
				return decErr
			}
			if err := invalid(decErr); err != nil {
				return err
			}
			continue
		}
		if err := fn(r); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}
