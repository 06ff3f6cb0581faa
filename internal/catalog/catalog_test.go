package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/xenking/order-placement/internal/domain/product"
	"github.com/xenking/order-placement/internal/storage/memory"
)

func writeGz(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	gz := pgzip.NewWriter(f)
	_, err = gz.Write([]byte(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return path
}

func TestDecodeRecord(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Record
		wantErr bool
	}{
		{
			name:  "string price",
			input: `{"name":"Waffle","price":"6.50","quantity":40}`,
			want:  Record{Name: "Waffle", Price: decimal.RequireFromString("6.50"), Quantity: 40},
		},
		{
			name:  "number price and unknown field",
			input: `{"sku":"X-1","name":"Baklava","price":4,"quantity":60,"tags":["nuts"]}`,
			want:  Record{Name: "Baklava", Price: decimal.RequireFromString("4"), Quantity: 60},
		},
		{name: "bad price", input: `{"name":"Waffle","price":"cheap"}`, wantErr: true},
		{name: "price object", input: `{"name":"Waffle","price":{}}`, wantErr: true},
		{name: "not an object", input: `["Waffle"]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRecord(jx.DecodeStr(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Name, got.Name)
			assert.True(t, tt.want.Price.Equal(got.Price), "price %s", got.Price)
			assert.Equal(t, tt.want.Quantity, got.Quantity)
		})
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeGz(t, dir, "a.jsonl.gz",
		`{"name":"Waffle","price":"6.50","quantity":40}`,
		``,
		`{"name":"Baklava","price":"4.00","quantity":60}`,
	)

	var names []string
	err := ReadFile(context.Background(), path, func(r Record) error {
		names = append(names, r.Name)
		return nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Waffle", "Baklava"}, names)
}

func TestReadFile_StopsOnMalformedLineWithoutHandler(t *testing.T) {
	dir := t.TempDir()
	path := writeGz(t, dir, "bad.jsonl.gz",
		`{"name":"Waffle","price":"6.50","quantity":40}`,
		`{"name":`,
	)

	err := ReadFile(context.Background(), path, func(Record) error { return nil }, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.jsonl.gz:2")

	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, 2, decErr.Line)
}

func TestReadFile_ContinuesPastMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := writeGz(t, dir, "bad.jsonl.gz",
		`{"name":"Waffle","price":"6.50","quantity":40}`,
		`{"name":`,
		`not json`,
		`{"name":"Baklava","price":"4.00","quantity":60}`,
	)

	var (
		names    []string
		badLines []int
	)
	err := ReadFile(context.Background(), path,
		func(r Record) error {
			names = append(names, r.Name)
			return nil
		},
		func(bad *DecodeError) error {
			assert.Equal(t, path, bad.Path)
			badLines = append(badLines, bad.Line)
			return nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"Waffle", "Baklava"}, names)
	assert.Equal(t, []int{2, 3}, badLines)
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	writeGz(t, dir, "b.jsonl.gz", `{}`)
	writeGz(t, dir, "a.jsonl.gz", `{}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	files, err := Files(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.jsonl.gz", filepath.Base(files[0]))
	assert.Equal(t, "b.jsonl.gz", filepath.Base(files[1]))
}

func TestImporter_Import(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	store := memory.New()
	existing, err := store.Products().Create(ctx, product.CreateParams{
		Name:     "Waffle",
		Price:    decimal.RequireFromString("6.50"),
		Quantity: 3,
	})
	require.NoError(t, err)

	dir := t.TempDir()
	writeGz(t, dir, "a.jsonl.gz",
		`{"name":"Waffle","price":"9.99","quantity":100}`,
		`{"name":"Baklava","price":"4.00","quantity":60}`,
		`{"name":"","price":"1.00","quantity":1}`,
	)
	writeGz(t, dir, "b.jsonl.gz",
		`{"name":" Baklava ","price":"4.50","quantity":10}`,
		`{"name":"Tiramisu","price":"5.50","quantity":12}`,
		`{"name":"Brulee","price":"-1","quantity":12}`,
	)
	files, err := Files(dir)
	require.NoError(t, err)

	im := NewImporter(store.Products(), product.NewService(store.Products()), Options{
		Workers:       2,
		ExpectedNames: 1000,
		ProgressEvery: 2,
	})
	stats, err := im.Import(ctx, files)
	require.NoError(t, err)

	assert.Equal(t, 6, stats.Read)
	assert.Equal(t, 2, stats.Created)
	assert.Equal(t, 2, stats.Duplicates)
	assert.Equal(t, 2, stats.Invalid)

	waffle, err := store.Products().FindByName(ctx, "Waffle")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, waffle.ID)
	assert.Equal(t, 3, waffle.Quantity, "existing products are not overwritten")

	_, err = store.Products().FindByName(ctx, "Tiramisu")
	require.NoError(t, err)
	_, err = store.Products().FindByName(ctx, "Baklava")
	require.NoError(t, err)
}

func TestImporter_SkipsMalformedLines(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	store := memory.New()

	dir := t.TempDir()
	writeGz(t, dir, "a.jsonl.gz",
		`{"name":"Waffle","price":"6.50","quantity":40}`,
		`{"name":`,
		`{"name":"Baklava","price":"4.00","quantity":60}`,
	)
	files, err := Files(dir)
	require.NoError(t, err)

	im := NewImporter(store.Products(), product.NewService(store.Products()), Options{Workers: 1})
	stats, err := im.Import(ctx, files)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Read)
	assert.Equal(t, 2, stats.Created)
	assert.Equal(t, 1, stats.Invalid)
	assert.Zero(t, stats.Duplicates)
	for _, name := range []string{"Waffle", "Baklava"} {
		_, err := store.Products().FindByName(ctx, name)
		require.NoError(t, err, name)
	}
}

func TestImporter_MissingFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := memory.New()
	im := NewImporter(store.Products(), product.NewService(store.Products()), Options{Workers: 2})

	_, err := im.Import(context.Background(), []string{filepath.Join(t.TempDir(), "missing.jsonl.gz")})
	require.Error(t, err)
}
