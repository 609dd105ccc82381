package option

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueryOption mutates a query before it runs.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type QueryOptionFunc func(db *gorm.DB) *gorm.DB

func (f QueryOptionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

type SortBy struct {
	Column string
	Desc   bool
}

// WithQuerySortBy validates a user supplied sort column against allowed and
// falls back to created_at DESC.
func WithQuerySortBy(sortBy, orderBy string, allowed map[string]bool) SortBy {
	column := strings.ToLower(strings.TrimSpace(sortBy))
	if column == "" || !allowed[column] {
		column = "created_at"
	}
	desc := true
	if strings.EqualFold(strings.TrimSpace(orderBy), "asc") {
		desc = false
	}
	return SortBy{Column: column, Desc: desc}
}

func WithSortBy(sort SortBy) QueryOption {
	return QueryOptionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Order(clause.OrderByColumn{Column: clause.Column{Name: sort.Column}, Desc: sort.Desc}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: sort.Desc})
	})
}
