package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// sortColumns is the set of columns a list endpoint may order by. Anything
// else from the client falls back to the default column.
type sortColumns struct {
	allowed  map[string]struct{}
	fallback string
}

func newSortColumns(fallback string, columns ...string) sortColumns {
	s := sortColumns{allowed: make(map[string]struct{}, len(columns)+1), fallback: fallback}
	s.allowed[fallback] = struct{}{}
	for _, c := range columns {
		s.allowed[c] = struct{}{}
	}
	return s
}

var (
	userSort     = newSortColumns("created_at", "updated_at", "email", "name", "role", "status")
	sellerSort   = newSortColumns("created_at", "updated_at", "company_name", "verified")
	buyerSort    = newSortColumns("created_at", "updated_at", "display_name", "lifetime_value", "orders_count", "last_active_at")
	expenseSort  = newSortColumns("incurred_at", "created_at", "amount", "category")
	approvalSort = newSortColumns("created_at", "updated_at", "decided_at", "amount", "status", "title")
)

// column returns name when it is allowed, the fallback otherwise.
func (s sortColumns) column(name string) string {
	name = strings.TrimSpace(name)
	if _, ok := s.allowed[name]; ok {
		return name
	}
	return s.fallback
}

// orderBy orders by the requested column and breaks ties on id so pages
// stay stable between requests.
func (s sortColumns) orderBy(name, dir string) clause.OrderBy {
	col := s.column(name)
	columns := []clause.OrderByColumn{{Column: clause.Column{Name: col}, Desc: descending(dir)}}
	if col != "id" {
		columns = append(columns, clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
	return clause.OrderBy{Columns: columns}
}

// descending is true unless dir asks for ascending order.
func descending(dir string) bool {
	return !strings.EqualFold(strings.TrimSpace(dir), "asc")
}
