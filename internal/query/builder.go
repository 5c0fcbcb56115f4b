// Package query converts between typed catalog query parameters and their
// URL query-string form. Build is used by clients, Parse by servers.
package query

import (
	"net/url"
	"strconv"

	"product-catalog-browser/internal/domain"
)

// Query-string parameter names.
const (
	ParamPage     = "page"
	ParamLimit    = "limit"
	ParamQuery    = "query"
	ParamCategory = "category"
	ParamStock    = "stock"
	ParamSort     = "sort"
)

// Build returns the canonical query parameters for p. page, limit and sort
// are always present; query, category and stock are omitted at their
// default values.
func Build(p domain.QueryParams) url.Values {
	v := url.Values{}
	v.Set(ParamPage, strconv.Itoa(p.Page))
	v.Set(ParamLimit, strconv.Itoa(p.Limit))
	if p.Query != "" {
		v.Set(ParamQuery, p.Query)
	}
	if !p.Category.IsAll() {
		v.Set(ParamCategory, string(p.Category))
	}
	if p.Stock != domain.StockAll {
		v.Set(ParamStock, p.Stock.String())
	}
	v.Set(ParamSort, p.Sort.String())
	return v
}
