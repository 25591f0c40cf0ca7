package pagination

import (
	"strconv"
	"strings"
)

const (
	// DefaultPerPage is the catalog page size.
	DefaultPerPage = 20
	MaxPerPage     = 100
)

type Meta struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	TotalItems  int  `json:"total_items"`
	PerPage     int  `json:"per_page"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// Request is the raw page and per_page params of a request.
type Request struct {
	Page    string
	PerPage string
}

// PerPageSize clamps the requested page size into [1, MaxPerPage], falling back to the default.
func (r Request) PerPageSize() int {
	n, err := strconv.Atoi(strings.TrimSpace(r.PerPage))
	if err != nil || n < 1 {
		return DefaultPerPage
	}
	if n > MaxPerPage {
		return MaxPerPage
	}
	return n
}

// Paginate slices items. Page numbers that are not numeric or fall outside
// [1, total pages] resolve to page 1.
func Paginate[T any](items []T, req Request) ([]T, Meta) {
	perPage := req.PerPageSize()
	total := len(items)
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}

	page, err := strconv.Atoi(strings.TrimSpace(req.Page))
	if err != nil || page < 1 || page > totalPages {
		page = 1
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}

	meta := Meta{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		PerPage:     perPage,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
	return items[start:end], meta
}
