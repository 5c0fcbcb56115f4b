package domain

import (
	"errors"
	"fmt"
)

// Pagination defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 8
	MaxLimit     = 100
)

var (
	ErrUnknownStockFilter = errors.New("domain: unknown stock filter")
	ErrUnknownSortKey     = errors.New("domain: unknown sort key")
)

// Category is a product category name. The set of valid categories is
// whatever the loaded catalog contains; CategoryAll disables the filter.
type Category string

const CategoryAll Category = "All"

// IsAll reports whether the category means "no filter".
func (c Category) IsAll() bool {
	return c == "" || c == CategoryAll
}

// StockFilter narrows results by availability.
type StockFilter int

const (
	StockAll StockFilter = iota
	StockAvailable
	StockOutOfStock
)

var stockFilterNames = [...]string{
	StockAll:        "All",
	StockAvailable:  "Available",
	StockOutOfStock: "Out of stock",
}

func (s StockFilter) String() string {
	if s < 0 || int(s) >= len(stockFilterNames) {
		return fmt.Sprintf("StockFilter(%d)", int(s))
	}
	return stockFilterNames[s]
}

// Matches reports whether a product with the given stock state passes the filter.
func (s StockFilter) Matches(inStock bool) bool {
	switch s {
	case StockAvailable:
		return inStock
	case StockOutOfStock:
		return !inStock
	default:
		return true
	}
}

// ParseStockFilter maps the wire value to a StockFilter. An empty string is All.
func ParseStockFilter(v string) (StockFilter, error) {
	if v == "" {
		return StockAll, nil
	}
	for i, name := range stockFilterNames {
		if name == v {
			return StockFilter(i), nil
		}
	}
	return StockAll, fmt.Errorf("%w: %q", ErrUnknownStockFilter, v)
}

// SortKey selects the ordering of list results.
type SortKey int

const (
	SortNameAsc SortKey = iota
	SortNameDesc
	SortPriceAsc
	SortPriceDesc
	SortStockAsc  // out of stock first
	SortStockDesc // in stock first
)

var sortKeyNames = [...]string{
	SortNameAsc:   "name-asc",
	SortNameDesc:  "name-desc",
	SortPriceAsc:  "price-asc",
	SortPriceDesc: "price-desc",
	SortStockAsc:  "stock-asc",
	SortStockDesc: "stock-desc",
}

// SortKeys lists every sort key in declaration order.
func SortKeys() []SortKey {
	keys := make([]SortKey, len(sortKeyNames))
	for i := range sortKeyNames {
		keys[i] = SortKey(i)
	}
	return keys
}

func (k SortKey) String() string {
	if k < 0 || int(k) >= len(sortKeyNames) {
		return fmt.Sprintf("SortKey(%d)", int(k))
	}
	return sortKeyNames[k]
}

// ParseSortKey maps the wire value to a SortKey. An empty string is name-asc.
func ParseSortKey(v string) (SortKey, error) {
	if v == "" {
		return SortNameAsc, nil
	}
	for i, name := range sortKeyNames {
		if name == v {
			return SortKey(i), nil
		}
	}
	return SortNameAsc, fmt.Errorf("%w: %q", ErrUnknownSortKey, v)
}

// QueryParams is the canonical parameter set for one catalog query.
type QueryParams struct {
	Query    string
	Category Category
	Page     int         `validate:"gte=1"`
	Limit    int         `validate:"gte=1"`
	Stock    StockFilter `validate:"gte=0,lte=2"`
	Sort     SortKey     `validate:"gte=0,lte=5"`
}

// DefaultQueryParams returns the parameters of an unfiltered first page.
func DefaultQueryParams() QueryParams {
	return QueryParams{
		Page:     DefaultPage,
		Limit:    DefaultLimit,
		Category: CategoryAll,
		Stock:    StockAll,
		Sort:     SortNameAsc,
	}
}

// Offset returns the index of the first item on the requested page.
func (q QueryParams) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}
