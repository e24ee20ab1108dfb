package repository

import (
	"slices"
	"time"
)

const (
	SortByCreatedAt = "createdAt"
	OrderAsc        = "asc"
	OrderDesc       = "desc"

	DefaultPageSize = 10
)

// PageSizes lists the page sizes a caller may ask for.
var PageSizes = []int{10, 20, 50}

// ListQuery selects a page of submissions. SortBy values other than
// SortByCreatedAt are ignored and the natural order, newest first, applies.
// The filter fields are zero when unused.
type ListQuery struct {
	Page   int
	Limit  int
	SortBy string
	Order  string

	IDPrefix      string
	CreatedAfter  time.Time
	CreatedBefore time.Time
}

// NormalizePage clamps page to at least 1 and falls back to DefaultPageSize
// for any limit outside PageSizes.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if !slices.Contains(PageSizes, limit) {
		limit = DefaultPageSize
	}
	return page, limit
}

// PageCount returns the number of pages needed for total items. An empty
// result still has one (empty) page.
func PageCount(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

func (q ListQuery) normalized() ListQuery {
	q.Page, q.Limit = NormalizePage(q.Page, q.Limit)
	return q
}

// Ascending reports whether the query asks for oldest-first ordering.
func (q ListQuery) Ascending() bool {
	return q.SortBy == SortByCreatedAt && q.Order == OrderAsc
}

// pastEnd reports whether the page starts after the last of total items.
// Stores answer such pages without querying, which also keeps offset from
// overflowing on huge page numbers.
func (q ListQuery) pastEnd(total int) bool {
	return q.Page > PageCount(total, q.Limit)
}

func (q ListQuery) offset() int {
	return (q.Page - 1) * q.Limit
}

func (q ListQuery) page(total int) *Page {
	return &Page{
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: PageCount(total, q.Limit),
	}
}
