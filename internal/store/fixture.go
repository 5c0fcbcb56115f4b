package store

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"product-catalog-browser/internal/domain"
)

//go:embed fixtures/products.json
var defaultFixture []byte

// FixtureSource reads the catalog from a JSON array of products. With an
// empty Path it serves the fixture compiled into the binary.
type FixtureSource struct {
	Path string
}

// NewFixtureSource creates a FixtureSource for path ("" for the built-in fixture).
func NewFixtureSource(path string) *FixtureSource {
	return &FixtureSource{Path: path}
}

func (s *FixtureSource) Load(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Path == "" {
		return decodeFixture(bytes.NewReader(defaultFixture))
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("store: FixtureSource failed to open %s: %w", s.Path, err)
	}
	defer f.Close()
	return decodeFixture(f)
}

func decodeFixture(r io.Reader) ([]domain.Product, error) {
	var products []domain.Product
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&products); err != nil {
		return nil, fmt.Errorf("store: FixtureSource failed to decode products: %w", err)
	}
	if err := checkProducts(products); err != nil {
		return nil, err
	}
	return products, nil
}
