package domain

import "math"

// DefaultPageSize is the number of notes shown on one listing page.
const DefaultPageSize = 5

// PaginationParams carries page/limit values from the HTTP layer to the repo layer.
// Page is 1-indexed.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return.
	Limit int
}

// NewPaginationParams builds a PaginationParams for the given page number and
// page size. A nil page means the first page; a non-positive size falls back
// to DefaultPageSize. Page numbers below 1 are kept as-is so the caller can
// reject them as not found.
func NewPaginationParams(page *int, size int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: size}
	if page != nil {
		p.Page = *page
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	return p
}

// Addressable reports whether the page can exist at all: it starts at 1 and
// its offset fits in an int. Pages failing this are not found without
// asking the database.
func (p PaginationParams) Addressable() bool {
	return p.Page >= 1 && p.Limit >= 1 && p.Page <= math.MaxInt/p.Limit
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
// Only meaningful when Addressable reports true.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is one page of a listing together with the numbers a paginator needs.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Number   int   `json:"number"`
	Size     int   `json:"size"`
	Total    int64 `json:"total"`
	NumPages int   `json:"num_pages"`
}

// NewPage assembles a Page. NumPages is at least 1 so an empty listing
// still has a valid first page.
func NewPage[T any](items []T, p PaginationParams, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	if pages < 1 {
		pages = 1
	}
	return Page[T]{Items: items, Number: p.Page, Size: p.Limit, Total: total, NumPages: pages}
}

// HasNext reports whether a later page exists.
func (p Page[T]) HasNext() bool { return p.Number < p.NumPages }

// HasPrevious reports whether an earlier page exists.
func (p Page[T]) HasPrevious() bool { return p.Number > 1 }
