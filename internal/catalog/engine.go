// Package catalog implements the catalog query engine: filtering, sorting and
// pagination over a read-only product snapshot, plus single-product lookup.
package catalog

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"product-catalog-browser/internal/domain"
)

// Options tunes an Engine.
type Options struct {
	// ListDelay and LookupDelay emulate network latency before each call.
	ListDelay   time.Duration
	LookupDelay time.Duration
	// Locale drives name ordering. Zero value means English.
	Locale language.Tag
}

// Engine answers catalog queries against an injected Repository.
type Engine struct {
	repo Repository
	opts Options
}

// NewEngine creates an Engine reading from repo.
func NewEngine(repo Repository, opts Options) *Engine {
	if opts.Locale == language.Und {
		opts.Locale = language.English
	}
	return &Engine{repo: repo, opts: opts}
}

// Query filters, sorts and paginates the catalog. An empty result is not an
// error; pages past the end return no items with the full total.
func (e *Engine) Query(ctx context.Context, p domain.QueryParams) (*domain.ListResponse, error) {
	if err := sleep(ctx, e.opts.ListDelay); err != nil {
		return nil, err
	}
	all, err := e.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	matched := filter(all, p)
	if err := e.sort(matched, p.Sort); err != nil {
		return nil, err
	}

	return &domain.ListResponse{
		Items: domain.CloneProducts(paginate(matched, p)),
		Page:  p.Page,
		Limit: p.Limit,
		Total: len(matched),
	}, nil
}

// Lookup returns the product with the given id or ErrProductNotFound.
func (e *Engine) Lookup(ctx context.Context, id string) (*domain.Product, error) {
	if err := sleep(ctx, e.opts.LookupDelay); err != nil {
		return nil, err
	}
	p, err := e.repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Facets returns the distinct categories, ordered by name, and stock counts.
func (e *Engine) Facets(ctx context.Context) (*domain.Facets, error) {
	all, err := e.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	f := &domain.Facets{Categories: []domain.Category{}}
	seen := make(map[domain.Category]bool)
	for _, p := range all {
		if p.InStock {
			f.Availability.InStock++
		} else {
			f.Availability.OutOfStock++
		}
		if !seen[p.Category] {
			seen[p.Category] = true
			f.Categories = append(f.Categories, p.Category)
		}
	}
	col := collate.New(e.opts.Locale)
	slices.SortFunc(f.Categories, func(a, b domain.Category) int {
		return col.CompareString(string(a), string(b))
	})
	return f, nil
}

// Categories returns the distinct categories in the catalog ordered by name.
func (e *Engine) Categories(ctx context.Context) ([]domain.Category, error) {
	f, err := e.Facets(ctx)
	if err != nil {
		return nil, err
	}
	return f.Categories, nil
}

// filter applies the text, category and stock filters in that order. The
// result is a fresh slice; the snapshot's backing array is never reordered.
func filter(all []domain.Product, p domain.QueryParams) []domain.Product {
	needle := strings.ToLower(p.Query)
	out := make([]domain.Product, 0, len(all))
	for _, prod := range all {
		if needle != "" && !strings.Contains(strings.ToLower(prod.Name), needle) {
			continue
		}
		if !p.Category.IsAll() && prod.Category != p.Category {
			continue
		}
		if !p.Stock.Matches(prod.InStock) {
			continue
		}
		out = append(out, prod)
	}
	return out
}

// sort orders products in place. Ties keep their relative order so repeated
// queries paginate identically.
func (e *Engine) sort(products []domain.Product, key domain.SortKey) error {
	var compare func(a, b domain.Product) int
	switch key {
	case domain.SortNameAsc, domain.SortNameDesc:
		col := collate.New(e.opts.Locale)
		compare = func(a, b domain.Product) int { return col.CompareString(a.Name, b.Name) }
	case domain.SortPriceAsc, domain.SortPriceDesc:
		compare = func(a, b domain.Product) int { return cmp.Compare(a.Price, b.Price) }
	case domain.SortStockAsc, domain.SortStockDesc:
		compare = func(a, b domain.Product) int { return cmp.Compare(boolRank(a.InStock), boolRank(b.InStock)) }
	default:
		return fmt.Errorf("%w: %v", domain.ErrUnknownSortKey, key)
	}

	switch key {
	case domain.SortNameDesc, domain.SortPriceDesc, domain.SortStockDesc:
		slices.SortStableFunc(products, func(a, b domain.Product) int { return compare(b, a) })
	default:
		slices.SortStableFunc(products, compare)
	}
	return nil
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func paginate(products []domain.Product, p domain.QueryParams) []domain.Product {
	if p.Page < 1 || p.Limit < 1 {
		return nil
	}
	// Compare in page units first so a huge page number cannot overflow the offset.
	if p.Page-1 > len(products)/p.Limit {
		return nil
	}
	start := p.Offset()
	if start >= len(products) {
		return nil
	}
	end := min(start+p.Limit, len(products))
	return products[start:end]
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
