package query

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"

	"product-catalog-browser/internal/domain"
)

// ErrInvalidParam is returned when a parameter holds a value outside its closed set.
var ErrInvalidParam = errors.New("query: invalid parameter")

// Parser coerces raw query-string values into domain.QueryParams.
type Parser struct {
	maxLimit int
	validate *validator.Validate
}

// NewParser creates a Parser that caps limit at maxLimit. A non-positive
// maxLimit falls back to domain.MaxLimit.
func NewParser(maxLimit int) *Parser {
	if maxLimit <= 0 {
		maxLimit = domain.MaxLimit
	}
	return &Parser{
		maxLimit: maxLimit,
		validate: validator.New(),
	}
}

var defaultParser = NewParser(domain.MaxLimit)

// Parse coerces values with the default limit cap.
func Parse(values url.Values) (domain.QueryParams, error) {
	return defaultParser.Parse(values)
}

// Parse coerces values into QueryParams. Missing, malformed or non-positive
// page and limit fall back to their defaults. Unknown stock or sort values
// are rejected; an unknown category is kept and simply matches nothing.
func (p *Parser) Parse(values url.Values) (domain.QueryParams, error) {
	params := domain.DefaultQueryParams()

	params.Page = positiveInt(values.Get(ParamPage), domain.DefaultPage)
	params.Limit = positiveInt(values.Get(ParamLimit), domain.DefaultLimit)
	if params.Limit > p.maxLimit {
		params.Limit = p.maxLimit
	}
	params.Query = values.Get(ParamQuery)
	if c := values.Get(ParamCategory); c != "" {
		params.Category = domain.Category(c)
	}

	stock, err := domain.ParseStockFilter(values.Get(ParamStock))
	if err != nil {
		return params, fmt.Errorf("%w: %s: %v", ErrInvalidParam, ParamStock, err)
	}
	params.Stock = stock

	sort, err := domain.ParseSortKey(values.Get(ParamSort))
	if err != nil {
		return params, fmt.Errorf("%w: %s: %v", ErrInvalidParam, ParamSort, err)
	}
	params.Sort = sort

	if err := p.validate.Struct(params); err != nil {
		return params, fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}
	return params, nil
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
