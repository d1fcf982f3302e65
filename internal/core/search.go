package core

import "strings"

// Filter returns the products whose name or category contains query,
// ignoring case. An empty query returns products unchanged.
func Filter(products []Product, query string) []Product {
	if query == "" {
		return products
	}

	lower := strings.ToLower(query)
	matched := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), lower) ||
			strings.Contains(strings.ToLower(p.Category), lower) {
			matched = append(matched, p)
		}
	}
	return matched
}
