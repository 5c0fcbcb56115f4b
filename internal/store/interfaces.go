package store

import (
	"context"
	"errors"
	"fmt"

	"product-catalog-browser/internal/domain"
)

// Predefined errors for catalog sources
var (
	ErrEmptyCatalog   = errors.New("store: catalog source returned no products")
	ErrUnknownSource  = errors.New("store: unknown catalog source")
	ErrInvalidProduct = errors.New("store: invalid product record")
)

// CatalogSource loads the full product catalog. It is called once at startup;
// the result is then served from memory.
type CatalogSource interface {
	Load(ctx context.Context) ([]domain.Product, error)
}

// Source kinds accepted by configuration.
const (
	SourceFixture  = "fixture"
	SourcePostgres = "postgres"
	SourceMongo    = "mongo"
)

// checkProducts enforces the record invariants every source must satisfy.
func checkProducts(products []domain.Product) error {
	if len(products) == 0 {
		return ErrEmptyCatalog
	}
	for i, p := range products {
		switch {
		case p.ID == "":
			return fmt.Errorf("%w: record %d has no id", ErrInvalidProduct, i)
		case p.Price < 0:
			return fmt.Errorf("%w: product %q has negative price", ErrInvalidProduct, p.ID)
		}
	}
	return nil
}
