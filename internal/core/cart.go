package core

import (
	"math"
	"slices"
)

// CartEntry is one product line in the cart. Price is captured when the line
// is first added.
type CartEntry struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Subtotal is Price times Quantity.
func (e CartEntry) Subtotal() float64 {
	return e.Price * float64(e.Quantity)
}

// CartReader is the read side of the cart, handed to views that only display
// it (header badge, cart panel).
type CartReader interface {
	Items() []CartEntry
	Count() int
	Units() int
	Total() float64
	IsOpen() bool
}

// CartWriter is the capability handed to table rows: they may add, nothing
// else.
type CartWriter interface {
	Add(p Product)
}

// Cart aggregates products by id. Adding a product that is already present
// increments its quantity. Quantities never drop below 1; removing a line
// requires Remove.
type Cart struct {
	entries []CartEntry
	index   map[int]int
	open    bool
}

var (
	_ CartReader = (*Cart)(nil)
	_ CartWriter = (*Cart)(nil)
)

// NewCart returns an empty, closed cart.
func NewCart() *Cart {
	return &Cart{index: make(map[int]int)}
}

// Add merges p into the cart.
func (c *Cart) Add(p Product) {
	if i, ok := c.index[p.ID]; ok {
		c.entries[i].Quantity++
		return
	}
	c.index[p.ID] = len(c.entries)
	c.entries = append(c.entries, CartEntry{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  1,
	})
}

// ChangeQuantity adjusts the quantity of id by delta, flooring at 1. Unknown
// ids are ignored. It returns the resulting quantity, or 0 if id is absent.
func (c *Cart) ChangeQuantity(id, delta int) int {
	i, ok := c.index[id]
	if !ok {
		return 0
	}
	q := c.entries[i].Quantity + delta
	if q < 1 {
		q = 1
	}
	c.entries[i].Quantity = q
	return q
}

// Remove deletes the line for id. It reports whether a line was removed.
func (c *Cart) Remove(id int) bool {
	i, ok := c.index[id]
	if !ok {
		return false
	}
	c.entries = slices.Delete(c.entries, i, i+1)
	delete(c.index, id)
	for j := i; j < len(c.entries); j++ {
		c.index[c.entries[j].ProductID] = j
	}
	return true
}

// Get returns the line for id.
func (c *Cart) Get(id int) (CartEntry, bool) {
	i, ok := c.index[id]
	if !ok {
		return CartEntry{}, false
	}
	return c.entries[i], true
}

// Items returns a copy of the lines in the order they were first added.
func (c *Cart) Items() []CartEntry {
	return slices.Clone(c.entries)
}

// Count is the number of distinct lines, as shown on the header badge.
func (c *Cart) Count() int {
	return len(c.entries)
}

// Units is the sum of all quantities.
func (c *Cart) Units() int {
	n := 0
	for _, e := range c.entries {
		n += e.Quantity
	}
	return n
}

// Total recomputes the sum of price times quantity on every call, rounded to
// cents.
func (c *Cart) Total() float64 {
	var sum float64
	for _, e := range c.entries {
		sum += e.Subtotal()
	}
	return math.Round(sum*100) / 100
}

// Clear empties the cart; visibility is unchanged.
func (c *Cart) Clear() {
	c.entries = nil
	clear(c.index)
}

// Toggle flips visibility and returns the new state.
func (c *Cart) Toggle() bool {
	c.open = !c.open
	return c.open
}

// Open shows the cart.
func (c *Cart) Open() { c.open = true }

// Close hides the cart.
func (c *Cart) Close() { c.open = false }

// IsOpen reports visibility.
func (c *Cart) IsOpen() bool {
	return c.open
}
