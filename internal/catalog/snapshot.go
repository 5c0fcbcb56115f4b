package catalog

import (
	"context"
	"errors"
	"fmt"

	"product-catalog-browser/internal/domain"
	"product-catalog-browser/internal/store"
)

var (
	ErrProductNotFound = errors.New("catalog: product not found")
	ErrDuplicateID     = errors.New("catalog: duplicate product id")
)

// Repository gives read access to a fixed catalog.
type Repository interface {
	// All returns every product in catalog order. Callers must not modify the result.
	All(ctx context.Context) ([]domain.Product, error)
	// ByID returns the product with the given id, or ErrProductNotFound.
	ByID(ctx context.Context, id string) (domain.Product, error)
}

// Snapshot is an immutable in-memory Repository. It owns a deep copy of the
// products it was built from.
type Snapshot struct {
	products []domain.Product
	byID     map[string]int
}

// NewSnapshot copies products into a new Snapshot. Product ids must be unique.
func NewSnapshot(products []domain.Product) (*Snapshot, error) {
	s := &Snapshot{
		products: domain.CloneProducts(products),
		byID:     make(map[string]int, len(products)),
	}
	for i, p := range s.products {
		if _, dup := s.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, p.ID)
		}
		s.byID[p.ID] = i
	}
	return s, nil
}

func (s *Snapshot) All(ctx context.Context) ([]domain.Product, error) {
	return s.products, ctx.Err()
}

func (s *Snapshot) ByID(ctx context.Context, id string) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, err
	}
	i, ok := s.byID[id]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return s.products[i].Clone(), nil
}

// Len returns the number of products in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.products)
}

// LoadSnapshot reads the full catalog from src once and freezes it.
func LoadSnapshot(ctx context.Context, src store.CatalogSource) (*Snapshot, error) {
	products, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to load snapshot: %w", err)
	}
	return NewSnapshot(products)
}
