// Package option holds small composable query options for gorm statements.
package option

import (
	"strings"

	"gorm.io/gorm"
)

type Option interface {
	Apply(stmt *gorm.DB) *gorm.DB
}

type sortBy struct {
	clause string
}

func (o sortBy) Apply(stmt *gorm.DB) *gorm.DB {
	if o.clause == "" {
		return stmt
	}
	return stmt.Order(o.clause)
}

// WithSortBy orders the statement by a pre-validated clause.
func WithSortBy(clause string) Option {
	return sortBy{clause: clause}
}

// WithQuerySortBy builds an ORDER BY clause from user-supplied sort_by/order_by
// query parameters, restricted to an allow-list of columns.
func WithQuerySortBy(field, direction string, allowed map[string]bool) string {
	field = strings.TrimSpace(strings.ToLower(field))
	if field == "" || !allowed[field] {
		return ""
	}
	direction = strings.TrimSpace(strings.ToUpper(direction))
	if direction != "ASC" && direction != "DESC" {
		direction = "ASC"
	}
	return field + " " + direction
}
