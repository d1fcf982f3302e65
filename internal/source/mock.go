package source

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/JonMunkholm/catalog/internal/core"
)

// DefaultMockCount is the size of the generated demo catalog.
const DefaultMockCount = 1200

// MockCategories are the categories generated products are drawn from.
var MockCategories = []string{"Electronics", "Grocery", "Clothing", "Accessories"}

// Mock generates a synthetic catalog. The same seed always yields the same
// products.
type Mock struct {
	Count int
	Seed  uint64
}

// NewMock returns a generator for count products. A zero seed picks one from
// the clock.
func NewMock(count int, seed int64) *Mock {
	s := uint64(seed)
	if seed == 0 {
		s = uint64(time.Now().UnixNano())
	}
	return &Mock{Count: count, Seed: s}
}

// Load generates the snapshot. It only fails if ctx is already done.
func (m *Mock) Load(ctx context.Context) ([]core.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return Generate(m.Count, m.Seed), nil
}

// Generate builds n products with ids 1..n:
//   - name "Product-<id>"
//   - category drawn uniformly from MockCategories
//   - price in [10, 1010) rounded to cents
//   - stock in [0, 1000)
//   - status active with probability 0.8, inactive otherwise
func Generate(n int, seed uint64) []core.Product {
	if n <= 0 {
		return []core.Product{}
	}
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	products := make([]core.Product, n)
	for i := range products {
		id := i + 1
		status := core.StatusActive
		if r.Float64() >= 0.8 {
			status = core.StatusInactive
		}
		products[i] = core.Product{
			ID:       id,
			Name:     fmt.Sprintf("Product-%d", id),
			Category: MockCategories[r.IntN(len(MockCategories))],
			Price:    math.Round((10+r.Float64()*1000)*100) / 100,
			Stock:    r.IntN(1000),
			Status:   status,
		}
	}
	return products
}
