package core

import "math"

// DefaultLowStockThreshold counts products with fewer units as low stock.
const DefaultLowStockThreshold = 5

// Stats is the read-only summary shown above the table.
type Stats struct {
	TotalProducts int     `json:"totalProducts"`
	TotalRevenue  float64 `json:"totalRevenue"`
	LowStock      int     `json:"lowStock"`
	Categories    int     `json:"categories"`
}

// ComputeStats summarizes products. Revenue is the sum of list prices.
func ComputeStats(products []Product, lowStockThreshold int) Stats {
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}

	s := Stats{TotalProducts: len(products)}
	categories := make(map[string]struct{})
	for _, p := range products {
		s.TotalRevenue += p.Price
		if p.Stock < lowStockThreshold {
			s.LowStock++
		}
		categories[p.Category] = struct{}{}
	}
	s.TotalRevenue = math.Round(s.TotalRevenue*100) / 100
	s.Categories = len(categories)
	return s
}
