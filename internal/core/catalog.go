package core

import (
	"log/slog"
	"slices"
)

// Catalog owns the canonical product list. It applies committed mutations and
// publishes every new snapshot to its subscribers.
type Catalog struct {
	products  []Product
	logger    *slog.Logger
	listeners []func(products []Product, replaced bool)
}

var _ MutationSink = (*Catalog)(nil)

// NewCatalog creates a catalog holding a copy of products.
func NewCatalog(products []Product, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		products: slices.Clone(products),
		logger:   logger,
	}
}

// Subscribe registers fn to receive each new snapshot. replaced is true only
// for snapshots swapped in by Replace. Snapshots must be treated as read-only.
func (c *Catalog) Subscribe(fn func(products []Product, replaced bool)) {
	c.listeners = append(c.listeners, fn)
}

// Products returns the current snapshot.
func (c *Catalog) Products() []Product {
	return c.products
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// Find looks a product up by id.
func (c *Catalog) Find(id int) (Product, bool) {
	i := slices.IndexFunc(c.products, func(p Product) bool { return p.ID == id })
	if i < 0 {
		return Product{}, false
	}
	return c.products[i], true
}

// Replace swaps in a new snapshot from the source.
func (c *Catalog) Replace(products []Product) {
	c.products = slices.Clone(products)
	c.publish(true)
}

// DeleteProduct removes the product with id. Unknown ids are ignored.
func (c *Catalog) DeleteProduct(id int) {
	next := slices.DeleteFunc(slices.Clone(c.products), func(p Product) bool { return p.ID == id })
	if len(next) == len(c.products) {
		c.logger.Debug("delete ignored, product not found", "product_id", id)
		return
	}
	c.products = next
	c.logger.Info("product deleted", "product_id", id)
	c.publish(false)
}

// EditProduct replaces the product with the same id. Unknown ids are ignored.
func (c *Catalog) EditProduct(p Product) {
	i := slices.IndexFunc(c.products, func(q Product) bool { return q.ID == p.ID })
	if i < 0 {
		c.logger.Debug("edit ignored, product not found", "product_id", p.ID)
		return
	}
	next := slices.Clone(c.products)
	next[i] = p
	c.products = next
	c.logger.Info("product updated", "product_id", p.ID)
	c.publish(false)
}

func (c *Catalog) publish(replaced bool) {
	for _, fn := range c.listeners {
		fn(c.products, replaced)
	}
}
