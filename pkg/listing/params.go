package listing

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Params holds the shaping inputs parsed from a request query string.
type Params struct {
	SearchTerm string
	Sort       string
	Fields     string
	Page       int
	Limit      int
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Filters    map[string]any
}

// reservedQueryKeys are consumed by the builder itself and never become
// equality filters.
var reservedQueryKeys = map[string]struct{}{
	"searchTerm": {},
	"sort":       {},
	"fields":     {},
	"page":       {},
	"limit":      {},
	"minPrice":   {},
	"maxPrice":   {},
}

// ParamsFromQuery extracts shaping parameters from a URL query. Unknown keys
// become equality filters only when the caller whitelists them.
func ParamsFromQuery(values url.Values, filterable ...string) Params {
	params := Params{
		SearchTerm: values.Get("searchTerm"),
		Sort:       values.Get("sort"),
		Fields:     values.Get("fields"),
		Filters:    map[string]any{},
	}

	if page, err := strconv.Atoi(values.Get("page")); err == nil {
		params.Page = page
	}
	if limit, err := strconv.Atoi(values.Get("limit")); err == nil {
		params.Limit = limit
	}
	if raw := strings.TrimSpace(values.Get("minPrice")); raw != "" {
		if price, err := decimal.NewFromString(raw); err == nil {
			params.MinPrice = &price
		}
	}
	if raw := strings.TrimSpace(values.Get("maxPrice")); raw != "" {
		if price, err := decimal.NewFromString(raw); err == nil {
			params.MaxPrice = &price
		}
	}

	for _, key := range filterable {
		if _, reserved := reservedQueryKeys[key]; reserved {
			continue
		}
		if raw := strings.TrimSpace(values.Get(key)); raw != "" {
			params.Filters[key] = raw
		}
	}

	return params
}

func (p Params) normalized() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Filters == nil {
		p.Filters = map[string]any{}
	}
	return p
}
