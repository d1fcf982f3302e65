package core

import "strconv"

// DefaultPageSize is the number of rows shown per page.
const DefaultPageSize = 10

// compactWindowLimit is the largest page count that is shown without ellipses.
const compactWindowLimit = 5

// TotalPages returns max(1, ceil(n/pageSize)).
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := (n + pageSize - 1) / pageSize
	if total < 1 {
		total = 1
	}
	return total
}

// ClampPage forces page into [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Paginate returns the rows of a 1-based page. Out-of-range pages are clamped
// first, so the result is empty only when products is empty.
func Paginate(products []Product, page, pageSize int) []Product {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page = ClampPage(page, TotalPages(len(products), pageSize))

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(products))
	if start >= end {
		return nil
	}
	return products[start:end]
}

// PageItem is one entry of the page-number strip: either a page number or an
// ellipsis marker. Ellipses have Number 0 and are never clickable.
type PageItem struct {
	Number   int  `json:"number,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
	Current  bool `json:"current,omitempty"`
}

// Label is the text shown for the item.
func (p PageItem) Label() string {
	if p.Ellipsis {
		return "..."
	}
	return strconv.Itoa(p.Number)
}

// PageWindow returns the compact page strip for the current page.
//
// Up to five pages are listed in full. Beyond that the first and last page are
// always present, with a window of neighbours around the current page that is
// widened near either end, and an ellipsis wherever pages are skipped.
func PageWindow(page, totalPages int) []PageItem {
	if totalPages < 1 {
		totalPages = 1
	}
	page = ClampPage(page, totalPages)

	number := func(n int) PageItem {
		return PageItem{Number: n, Current: n == page}
	}

	if totalPages <= compactWindowLimit {
		items := make([]PageItem, 0, totalPages)
		for n := 1; n <= totalPages; n++ {
			items = append(items, number(n))
		}
		return items
	}

	start := max(2, page-1)
	end := min(totalPages-1, page+1)
	if page <= 3 {
		end = min(totalPages-1, 4)
	}
	if page >= totalPages-2 {
		start = max(2, totalPages-3)
	}

	items := []PageItem{number(1)}
	if start > 2 {
		items = append(items, PageItem{Ellipsis: true})
	}
	for n := start; n <= end; n++ {
		items = append(items, number(n))
	}
	if end < totalPages-1 {
		items = append(items, PageItem{Ellipsis: true})
	}
	return append(items, number(totalPages))
}
