// Package listing implements the generic query-shaping utility used by list
// endpoints: free-text search, equality and price-range filters, sorting,
// offset pagination, and field projection over a GORM query.
package listing

import (
	"regexp"
	"strings"

	"gorm.io/gorm"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 10
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Meta describes the page returned alongside list results.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

var identifierPattern = regexp.MustCompile(`^-?[a-z][a-z0-9_]*$`)

// Builder shapes a GORM query from request parameters.
type Builder struct {
	query  *gorm.DB
	params Params
}

// New wraps a base query. The base should already carry any scope conditions
// (visibility, ownership) the caller enforces.
func New(query *gorm.DB, params Params) *Builder {
	return &Builder{query: query, params: params.normalized()}
}

// Search adds a case-insensitive LIKE across the searchable columns.
func (b *Builder) Search(fields ...string) *Builder {
	term := strings.TrimSpace(b.params.SearchTerm)
	if term == "" || len(fields) == 0 {
		return b
	}

	pattern := "%" + strings.ToLower(term) + "%"
	var conditions []string
	var args []any
	for _, field := range fields {
		if !identifierPattern.MatchString(field) {
			continue
		}
		conditions = append(conditions, "LOWER("+field+") LIKE ?")
		args = append(args, pattern)
	}
	if len(conditions) == 0 {
		return b
	}
	b.query = b.query.Where(strings.Join(conditions, " OR "), args...)
	return b
}

// Filter applies the equality filters plus the min/max price range.
func (b *Builder) Filter() *Builder {
	for field, value := range b.params.Filters {
		if !identifierPattern.MatchString(field) {
			continue
		}
		b.query = b.query.Where(field+" = ?", value)
	}
	if b.params.MinPrice != nil {
		b.query = b.query.Where("price >= ?", *b.params.MinPrice)
	}
	if b.params.MaxPrice != nil {
		b.query = b.query.Where("price <= ?", *b.params.MaxPrice)
	}
	return b
}

// Sort orders by the requested columns; "-field" sorts descending. Falls back
// to newest-first.
func (b *Builder) Sort() *Builder {
	applied := false
	for _, field := range strings.Split(b.params.Sort, ",") {
		field = strings.TrimSpace(field)
		if field == "" || !identifierPattern.MatchString(field) {
			continue
		}
		direction := " ASC"
		if strings.HasPrefix(field, "-") {
			field = field[1:]
			direction = " DESC"
		}
		b.query = b.query.Order(field + direction)
		applied = true
	}
	if !applied {
		b.query = b.query.Order("created_at DESC")
	}
	return b
}

// Select narrows the projected columns when a fields list is supplied.
func (b *Builder) Select() *Builder {
	if b.params.Fields == "" {
		return b
	}
	var columns []string
	for _, field := range strings.Split(b.params.Fields, ",") {
		field = strings.TrimSpace(field)
		if identifierPattern.MatchString(field) && !strings.HasPrefix(field, "-") {
			columns = append(columns, field)
		}
	}
	if len(columns) > 0 {
		b.query = b.query.Select(columns)
	}
	return b
}

// Find counts the filtered rows, applies pagination, and loads the page into
// dest. Count runs before offset/limit so Meta reflects the whole result set.
func (b *Builder) Find(dest any) (Meta, error) {
	meta := Meta{Page: b.params.Page, Limit: b.params.Limit}

	if err := b.query.Session(&gorm.Session{}).Count(&meta.Total).Error; err != nil {
		return meta, err
	}
	meta.TotalPages = (meta.Total + int64(meta.Limit) - 1) / int64(meta.Limit)

	offset := (b.params.Page - 1) * b.params.Limit
	if err := b.query.Offset(offset).Limit(b.params.Limit).Find(dest).Error; err != nil {
		return meta, err
	}
	return meta, nil
}
